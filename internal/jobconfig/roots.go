package jobconfig

import (
	"fmt"

	"github.com/qrious/asyncrewriter/internal/model"
)

// ResolveRoots parses every configured root into a MethodIdentity, the form
// internal/flood.Flood's roots parameter needs. A malformed entry is
// reported with its position so a config-file typo is easy to locate.
func (c *Config) ResolveRoots() ([]model.MethodIdentity, error) {
	out := make([]model.MethodIdentity, 0, len(c.Roots))

	for i, r := range c.Roots {
		id, err := model.ParseMethodIdentity(r)
		if err != nil {
			return nil, fmt.Errorf("roots[%d]: %w", i, err)
		}

		out = append(out, id)
	}

	return out, nil
}
