package script

import (
	"fmt"

	"github.com/dshills/settingkit/internal/container"
	"github.com/dshills/settingkit/internal/setting"
)

// Binding attaches a script to a setting of a container.
type Binding struct {
	Setting string
	Deps    []string
	Program *Program
}

// Bind resolves the named settings in c and installs the program as the
// streamline function of b.Setting.
func Bind(c *container.Container, b Binding) error {
	target, err := c.Get(b.Setting)
	if err != nil {
		return fmt.Errorf("bind script: %w", err)
	}

	deps := make([]*setting.Setting, 0, len(b.Deps))
	for _, name := range b.Deps {
		dep, err := c.Get(name)
		if err != nil {
			return fmt.Errorf("bind script to %s: %w", b.Setting, err)
		}
		deps = append(deps, dep)
	}

	return target.SetStreamlineFunc(b.Program.Func(), deps...)
}
