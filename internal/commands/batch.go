package commands

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"tasksync/internal/exitcode"
	"tasksync/internal/output"
	"tasksync/internal/service"
	"tasksync/internal/store"
)

// maxInFlight bounds concurrent backend calls for one command.
const maxInFlight = 4

// applyToRefs loads the list, resolves refs against it and runs fn on every
// resolved task concurrently. Each failure is reported, in ref order.
func applyToRefs(ctx context.Context, st *store.Store, refs []string, byID bool, errOut io.Writer,
	fn func(ctx context.Context, task service.Task) error) int {
	if len(refs) == 0 {
		fmt.Fprintf(errOut, "error: %v\n", ErrTaskRefRequired)
		return exitcode.UserError
	}

	if err := st.LoadTasks(ctx); err != nil {
		return backendError(errOut, err)
	}

	tasks, err := ResolveTasks(st.State().Tasks, refs, byID)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	errs := make([]error, len(tasks))
	var g errgroup.Group
	g.SetLimit(maxInFlight)
	for i, task := range tasks {
		g.Go(func() error {
			errs[i] = fn(ctx, task)
			return nil
		})
	}
	g.Wait()

	code := exitcode.Success
	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %s: %v\n", output.Title(tasks[i].Title), err)
			code = exitcode.BackendError
		}
	}
	return code
}
