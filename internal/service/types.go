// Package service defines the backend-agnostic interface for task operations.
package service

// Task represents a single task item as the remote API returns it.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedAt   string `json:"createdAt"` // ISO-8601, kept as sent by the server
}
