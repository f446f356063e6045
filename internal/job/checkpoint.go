package job

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qrious/asyncrewriter/pkg/mapx"
)

const rewriteStateFile = "rewrite_state.json"

// rewriteState is the on-disk shape of a Transformation checkpoint: every
// file path already rewritten (and, if apply was true, already written to
// disk), so a resumed run skips re-emitting them.
type rewriteState struct {
	Completed []string `json:"completed"`
}

// rewriteCheckpoint implements checkpoint.Checkpointable for a
// Transformation run, adapted from the teacher's own Checkpointable stage
// pattern (internal/checkpoint/checkpointable_test.go's mockCheckpointable)
// to the rewriter's single piece of resumable state: which files are done.
type rewriteCheckpoint struct {
	completed map[string]struct{}
}

func newRewriteCheckpoint() *rewriteCheckpoint {
	return &rewriteCheckpoint{completed: make(map[string]struct{})}
}

func (c *rewriteCheckpoint) markDone(filePath string) {
	c.completed[filePath] = struct{}{}
}

func (c *rewriteCheckpoint) isDone(filePath string) bool {
	_, ok := c.completed[filePath]

	return ok
}

// SaveCheckpoint implements checkpoint.Checkpointable.
func (c *rewriteCheckpoint) SaveCheckpoint(dir string) error {
	state := rewriteState{Completed: mapx.SortedKeys(c.completed)}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal rewrite state: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, rewriteStateFile), data, 0o600); err != nil {
		return fmt.Errorf("write rewrite state: %w", err)
	}

	return nil
}

// LoadCheckpoint implements checkpoint.Checkpointable.
func (c *rewriteCheckpoint) LoadCheckpoint(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, rewriteStateFile))
	if err != nil {
		return fmt.Errorf("read rewrite state: %w", err)
	}

	var state rewriteState

	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal rewrite state: %w", err)
	}

	c.completed = make(map[string]struct{}, len(state.Completed))
	for _, f := range state.Completed {
		c.completed[f] = struct{}{}
	}

	return nil
}

// CheckpointSize implements checkpoint.Checkpointable.
func (c *rewriteCheckpoint) CheckpointSize() int64 {
	data, err := json.Marshal(rewriteState{Completed: mapx.SortedKeys(c.completed)})
	if err != nil {
		return 0
	}

	return int64(len(data))
}
