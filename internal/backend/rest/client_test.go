package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tasksync/internal/api"
	"tasksync/internal/backend/rest"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// newBackend starts a server that records each request and answers with status and body.
func newBackend(t *testing.T, status int, body string) (*rest.Client, *[]recordedRequest) {
	t.Helper()

	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.EscapedPath(), Body: string(data)})
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return rest.New(api.New(srv.URL, api.WithHTTPClient(srv.Client()))), &reqs
}

func TestListTasks(t *testing.T) {
	backend, reqs := newBackend(t, http.StatusOK,
		`[{"id":"1","title":"a","isCompleted":false,"createdAt":"2024-01-01T00:00:00Z"},`+
			`{"id":"2","title":"b","isCompleted":true,"createdAt":"2024-01-02T00:00:00Z"}]`)

	tasks, err := backend.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != "1" || tasks[1].ID != "2" || !tasks[1].IsCompleted {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
	if got := (*reqs)[0]; got.Method != http.MethodGet || got.Path != "/tasks" {
		t.Errorf("expected GET /tasks, got %s %s", got.Method, got.Path)
	}
}

func TestCreateTask(t *testing.T) {
	backend, reqs := newBackend(t, http.StatusCreated,
		`{"id":"9","title":"Buy milk","isCompleted":false,"createdAt":"2024-01-03T00:00:00Z"}`)

	task, err := backend.CreateTask(context.Background(), "Buy milk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.ID != "9" || task.Title != "Buy milk" {
		t.Errorf("unexpected task: %+v", task)
	}

	got := (*reqs)[0]
	if got.Method != http.MethodPost || got.Path != "/tasks" {
		t.Errorf("expected POST /tasks, got %s %s", got.Method, got.Path)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(got.Body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["title"] != "Buy milk" || len(body) != 1 {
		t.Errorf("expected {title}, got %v", body)
	}
}

func TestSetCompleted(t *testing.T) {
	backend, reqs := newBackend(t, http.StatusOK, `{"id":"1","isCompleted":true}`)

	if err := backend.SetCompleted(context.Background(), "1", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := (*reqs)[0]
	if got.Method != http.MethodPatch || got.Path != "/tasks/1" {
		t.Errorf("expected PATCH /tasks/1, got %s %s", got.Method, got.Path)
	}
	if got.Body != `{"isCompleted":true}` {
		t.Errorf("expected isCompleted body, got %s", got.Body)
	}
}

func TestSetCompleted_Failure(t *testing.T) {
	backend, _ := newBackend(t, http.StatusNotFound, `{"message":"task not found"}`)

	err := backend.SetCompleted(context.Background(), "1", false)
	if err == nil || err.Error() != "task not found" {
		t.Errorf("expected 'task not found', got %v", err)
	}
}

func TestDeleteTask_EscapesID(t *testing.T) {
	backend, reqs := newBackend(t, http.StatusNoContent, "")

	if err := backend.DeleteTask(context.Background(), "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := (*reqs)[0]
	if got.Method != http.MethodDelete || got.Path != "/tasks/a%2Fb" {
		t.Errorf("expected DELETE /tasks/a%%2Fb, got %s %s", got.Method, got.Path)
	}
}
