// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// The store and the commands only ever see this interface; backends own the
// transport.
type Service interface {
	// ListTasks returns every task in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask creates a task and returns it as stored by the server.
	CreateTask(ctx context.Context, title string) (Task, error)

	// SetCompleted sets the completion flag of a task.
	SetCompleted(ctx context.Context, id string, completed bool) error

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
