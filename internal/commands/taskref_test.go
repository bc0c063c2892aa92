package commands

import (
	"testing"

	"tasksync/internal/service"
)

var refTasks = []service.Task{
	{ID: "a", Title: "first"},
	{ID: "b", Title: "second"},
	{ID: "c", Title: "third"},
}

func TestParseTaskNum(t *testing.T) {
	num, err := ParseTaskNum("12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 12 {
		t.Errorf("expected 12, got %d", num)
	}
}

func TestParseTaskNum_Invalid(t *testing.T) {
	for _, ref := range []string{"", "a1", "1a", "-1", "٣"} {
		_, err := ParseTaskNum(ref)
		if err == nil {
			t.Errorf("expected error for %q", ref)
			continue
		}
		if err.Error() != "invalid task reference: "+ref {
			t.Errorf("unexpected message for %q: %q", ref, err.Error())
		}
	}
}

func TestResolveTasks_ByPosition(t *testing.T) {
	got, err := ResolveTasks(refTasks, []string{"3", "1"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Errorf("expected [c a], got %v", got)
	}
}

func TestResolveTasks_ByID(t *testing.T) {
	got, err := ResolveTasks(refTasks, []string{"b"}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "second" {
		t.Errorf("expected task b, got %v", got)
	}
}

func TestResolveTasks_Dedup(t *testing.T) {
	got, err := ResolveTasks(refTasks, []string{"2", "2", "1"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("expected [b a], got %v", got)
	}
}

func TestResolveTasks_Errors(t *testing.T) {
	tests := []struct {
		name string
		refs []string
		byID bool
		want string
	}{
		{"none", nil, false, "task reference required"},
		{"zero", []string{"0"}, false, "task number out of range: 0"},
		{"past end", []string{"4"}, false, "task number out of range: 4"},
		{"not a number", []string{"x"}, false, "invalid task reference: x"},
		{"unknown id", []string{"z"}, true, "task not found: z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveTasks(refTasks, tt.refs, tt.byID)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
		})
	}
}
