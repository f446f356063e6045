package checkpoint

import "github.com/qrious/asyncrewriter/pkg/persist"

// Codec is an alias for [persist.Codec].
type Codec = persist.Codec

// JSONCodec is an alias for [persist.JSONCodec].
type JSONCodec = persist.JSONCodec

// GobCodec is an alias for [persist.GobCodec].
type GobCodec = persist.GobCodec

// NewJSONCodec creates a JSON codec with pretty-printing.
func NewJSONCodec() *JSONCodec {
	return persist.NewJSONCodec()
}

// NewCompactJSONCodec creates a JSON codec without indentation.
func NewCompactJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec {
	return persist.NewGobCodec()
}

// SaveState persists state to dir/basename+codec.Extension() using codec.
func SaveState(dir, basename string, codec Codec, state any) error {
	return persist.SaveState(dir, basename, codec, state)
}

// LoadState restores state from dir/basename+codec.Extension() using codec.
func LoadState(dir, basename string, codec Codec, state any) error {
	return persist.LoadState(dir, basename, codec, state)
}
