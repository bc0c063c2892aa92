package store

import "tasksync/internal/service"

// removal is a task taken out of the collection and where it sat.
type removal struct {
	task  service.Task
	index int
	prev  string // id of the task before it, "" if it was first
	next  string // id of the task after it, "" if it was last
}

// withCompleted returns a copy of tasks with the flag of task id set.
func withCompleted(tasks []service.Task, id string, completed bool) []service.Task {
	out := make([]service.Task, len(tasks))
	for i, t := range tasks {
		if t.ID == id {
			t.IsCompleted = completed
		}
		out[i] = t
	}
	return out
}

// without returns a copy of tasks minus task id, and what was removed.
func without(tasks []service.Task, id string) ([]service.Task, []removal) {
	out := make([]service.Task, 0, len(tasks))
	var removed []removal
	for i, t := range tasks {
		if t.ID != id {
			out = append(out, t)
			continue
		}
		r := removal{task: t, index: i}
		if len(out) > 0 {
			r.prev = out[len(out)-1].ID
		}
		if i+1 < len(tasks) {
			r.next = tasks[i+1].ID
		}
		removed = append(removed, r)
	}
	return out, removed
}

// reinsert puts removed tasks back next to their old neighbours, or at
// their old index (clamped) when both neighbours are gone. Tasks that are
// present again are skipped.
func reinsert(tasks []service.Task, removed []removal) []service.Task {
	out := make([]service.Task, len(tasks), len(tasks)+len(removed))
	copy(out, tasks)
	for _, r := range removed {
		if indexOf(out, r.task.ID) >= 0 {
			continue
		}
		at := min(r.index, len(out))
		if i := indexOf(out, r.prev); r.prev != "" && i >= 0 {
			at = i + 1
		} else if i := indexOf(out, r.next); r.next != "" && i >= 0 {
			at = i
		}
		out = append(out[:at], append([]service.Task{r.task}, out[at:]...)...)
	}
	return out
}

func indexOf(tasks []service.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
