// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"tasksync/internal/service"
)

// ErrNotFound is returned when a task is not found.
var ErrNotFound = errors.New("not found")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu    sync.Mutex
	tasks []service.Task
	gates map[string]*Gate
	calls []string

	// Error injection for testing
	ListTasksErr    error
	CreateTaskErr   error
	SetCompletedErr error
	DeleteTaskErr   error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		gates: make(map[string]*Gate),
	}
}

// AddTask appends a task to the fake's server-side list.
func (f *FakeService) AddTask(id, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{
		ID:          id,
		Title:       title,
		IsCompleted: completed,
		CreatedAt:   "2024-01-01T00:00:00Z",
	})
}

// Tasks returns a copy of the fake's server-side list.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Calls returns the calls received so far, formatted as "Method arg...".
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Hold makes the next call to method block until the returned gate is released.
func (f *FakeService) Hold(method string) *Gate {
	g := &Gate{
		entered: make(chan struct{}, 1),
		release: make(chan error, 1),
	}
	f.mu.Lock()
	f.gates[method] = g
	f.mu.Unlock()
	return g
}

// enter records the call and waits on a gate if one is set for method.
func (f *FakeService) enter(method string, args ...any) error {
	f.mu.Lock()
	f.calls = append(f.calls, strings.TrimSpace(fmt.Sprintln(append([]any{method}, args...)...)))
	g := f.gates[method]
	delete(f.gates, method)
	f.mu.Unlock()

	if g == nil {
		return nil
	}
	g.entered <- struct{}{}
	return <-g.release
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.enter("ListTasks"); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.Service.
// New tasks go to the front, as the store shows them.
func (f *FakeService) CreateTask(ctx context.Context, title string) (service.Task, error) {
	if err := f.enter("CreateTask", title); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}

	task := service.Task{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	f.mu.Lock()
	f.tasks = append([]service.Task{task}, f.tasks...)
	f.mu.Unlock()
	return task, nil
}

// SetCompleted implements service.Service.
func (f *FakeService) SetCompleted(ctx context.Context, id string, completed bool) error {
	if err := f.enter("SetCompleted", id, completed); err != nil {
		return err
	}
	if f.SetCompletedErr != nil {
		return f.SetCompletedErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].IsCompleted = completed
			return nil
		}
	}
	return ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if err := f.enter("DeleteTask", id); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Gate holds one backend call in flight.
type Gate struct {
	entered chan struct{}
	release chan error
}

// Wait blocks until the held call has started, or fails the test after timeout.
func (g *Gate) Wait(t testing.TB, timeout time.Duration) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(timeout):
		t.Fatalf("held call did not start within %s", timeout)
	}
}

// Release lets the held call continue. A non-nil err makes it fail with err.
func (g *Gate) Release(err error) {
	g.release <- err
}
