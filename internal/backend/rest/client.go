// Package rest implements the service.Service interface over the tasks REST API.
package rest

import (
	"context"
	"encoding/json"
	"net/url"

	"tasksync/internal/api"
	"tasksync/internal/service"
)

const tasksEndpoint = "/tasks"

// Client implements service.Service using the JSON HTTP client.
type Client struct {
	api *api.Client
}

// New creates a REST backend on top of an API client.
func New(c *api.Client) *Client {
	return &Client{api: c}
}

type createTaskRequest struct {
	Title string `json:"title"`
}

type setCompletedRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

// ListTasks fetches the full task list.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	return api.Get[[]service.Task](ctx, c.api, tasksEndpoint)
}

// CreateTask posts a new task and returns the server's copy.
func (c *Client) CreateTask(ctx context.Context, title string) (service.Task, error) {
	return api.Post[service.Task](ctx, c.api, tasksEndpoint, createTaskRequest{Title: title})
}

// SetCompleted patches the completion flag. Any JSON response body is accepted
// and discarded.
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) error {
	_, err := api.Patch[json.RawMessage](ctx, c.api, taskEndpoint(id), setCompletedRequest{IsCompleted: completed})
	return err
}

// DeleteTask deletes a task. The response body is not used.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := api.Delete[json.RawMessage](ctx, c.api, taskEndpoint(id))
	return err
}

func taskEndpoint(id string) string {
	return tasksEndpoint + "/" + url.PathEscape(id)
}

var _ service.Service = (*Client)(nil)
