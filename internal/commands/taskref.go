package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"tasksync/internal/service"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskNum parses a 1-based task number as printed by list.
func ParseTaskNum(ref string) (int, error) {
	if !isAllDigits(ref) {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, nil
}

// ResolveTasks maps refs onto tasks. A ref is a 1-based position in tasks,
// or a task id when byID is set. The same task named twice is returned once,
// in the order first named.
func ResolveTasks(tasks []service.Task, refs []string, byID bool) ([]service.Task, error) {
	if len(refs) == 0 {
		return nil, ErrTaskRefRequired
	}

	var result []service.Task
	seen := make(map[string]bool)
	for _, ref := range refs {
		task, err := resolveTask(tasks, ref, byID)
		if err != nil {
			return nil, err
		}
		if seen[task.ID] {
			continue
		}
		seen[task.ID] = true
		result = append(result, task)
	}
	return result, nil
}

func resolveTask(tasks []service.Task, ref string, byID bool) (service.Task, error) {
	if byID {
		for _, t := range tasks {
			if t.ID == ref {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("task not found: %s", ref)
	}

	num, err := ParseTaskNum(ref)
	if err != nil {
		return service.Task{}, err
	}
	if num < 1 || num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return tasks[num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
