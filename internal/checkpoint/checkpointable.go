package checkpoint

// Checkpointable is an optional interface for pipeline stages that support
// resuming a partially-completed Transformation job.
type Checkpointable interface {
	// SaveCheckpoint writes stage state to the given directory.
	SaveCheckpoint(dir string) error

	// LoadCheckpoint restores stage state from the given directory.
	LoadCheckpoint(dir string) error

	// CheckpointSize returns the estimated size of the checkpoint in bytes.
	CheckpointSize() int64
}
