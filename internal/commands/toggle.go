package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	byID bool
}

// SetByID makes refs task ids instead of positions (for testing).
func (c *ToggleCmd) SetByID(v bool) {
	c.byID = v
}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"t", "done"} }
func (c *ToggleCmd) Synopsis() string   { return "Flip the completed flag of tasks" }
func (c *ToggleCmd) Usage() string      { return "tasksync toggle [--id] <ref...>" }
func (c *ToggleCmd) NeedsBackend() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	code := applyToRefs(ctx, st, args, c.byID, errOut, func(ctx context.Context, task service.Task) error {
		return st.ToggleTask(ctx, task.ID, task.IsCompleted)
	})
	if code == exitcode.Success && !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return code
}
