// Package store keeps an in-memory task list in sync with a task backend.
//
// The store is the only writer of its state. Consumers observe it through
// Subscribe or State and change it only through LoadTasks, AddTask,
// ToggleTask and DeleteTask. Toggle and delete are applied locally before
// the backend answers and are rolled back if the backend call fails.
package store

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"tasksync/internal/service"
)

// State is what subscribers see.
type State struct {
	Tasks   []service.Task
	Loading bool
	// Error is the message of the last failed load; empty means no error.
	Error string
}

func (s State) clone() State {
	s.Tasks = slices.Clone(s.Tasks)
	return s
}

// Listener receives the full state on every change.
type Listener func(State)

// Store holds the task list and the operations that change it.
// A Store is safe for concurrent use; operations never wait on each other.
type Store struct {
	svc    service.Service
	logger *log.Logger
	policy RollbackPolicy
	hook   func(Mutation)

	mu        sync.Mutex
	state     State
	listeners map[uint64]Listener
	nextSub   uint64
	nextMut   uint64
	pending   []*Mutation

	// emitMu serializes listener delivery in update order.
	emitMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for failed operations and mutation tracing.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRollbackPolicy sets how a failed delete is undone.
func WithRollbackPolicy(p RollbackPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithMutationHook registers fn to be called on every mutation phase change.
// fn runs on the goroutine of the operation, outside the store's locks.
func WithMutationHook(fn func(Mutation)) Option {
	return func(s *Store) {
		s.hook = fn
	}
}

// New creates an empty, idle store over svc.
func New(svc service.Service, opts ...Option) *Store {
	s := &Store{
		svc:       svc,
		logger:    log.New(io.Discard),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Pending returns the optimistic mutations still waiting on the backend,
// oldest first.
func (s *Store) Pending() []Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Mutation, len(s.pending))
	for i, m := range s.pending {
		out[i] = *m
	}
	return out
}

// Subscribe calls fn with the current state now and after every change
// until the returned function is called.
//
// Listeners run synchronously, one delivery at a time, and must not call
// the store's operations from inside fn; hand that work to a goroutine.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.listeners[id] = fn
	snapshot := s.state
	s.emitMu.Lock()
	s.mu.Unlock()
	s.deliver([]Listener{fn}, snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// update applies fn to the state and notifies every listener.
// fn runs under the state lock and must return new slices rather than
// modifying the ones it was given.
func (s *Store) update(fn func(State) State) {
	s.mu.Lock()
	s.state = fn(s.state)
	snapshot := s.state
	listeners := s.listenersLocked()
	// Take the delivery lock before letting go of the state lock so that
	// deliveries keep update order.
	s.emitMu.Lock()
	s.mu.Unlock()
	s.deliver(listeners, snapshot)
}

// deliver must be called with emitMu held; it releases it.
func (s *Store) deliver(listeners []Listener, snapshot State) {
	defer s.emitMu.Unlock()
	for _, fn := range listeners {
		fn(snapshot.clone())
	}
}

func (s *Store) listenersLocked() []Listener {
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, len(ids))
	for i, id := range ids {
		out[i] = s.listeners[id]
	}
	return out
}

// LoadTasks replaces the collection with the backend's list.
// On failure the collection is kept and State.Error carries the message.
func (s *Store) LoadTasks(ctx context.Context) error {
	s.update(func(st State) State {
		st.Loading = true
		st.Error = ""
		return st
	})

	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		s.logger.Debug("load tasks failed", "err", err)
		s.update(func(st State) State {
			st.Loading = false
			st.Error = err.Error()
			return st
		})
		return err
	}

	tasks = slices.Clone(tasks)
	s.update(func(st State) State {
		st.Tasks = tasks
		st.Loading = false
		return st
	})
	s.logger.Debug("loaded tasks", "count", len(tasks))
	return nil
}

// AddTask creates a task and prepends the server's copy.
// Nothing is inserted before the backend answers, so a failure leaves the
// state untouched; it is logged and returned but not surfaced in State.Error.
func (s *Store) AddTask(ctx context.Context, title string) (service.Task, error) {
	task, err := s.svc.CreateTask(ctx, title)
	if err != nil {
		s.logger.Error("failed to add task", "title", title, "err", err)
		return service.Task{}, err
	}

	s.update(func(st State) State {
		tasks := make([]service.Task, 0, len(st.Tasks)+1)
		tasks = append(tasks, task)
		st.Tasks = append(tasks, st.Tasks...)
		return st
	})
	return task, nil
}

// ToggleTask flips the task's flag from currentStatus right away, then asks
// the backend to store it. On failure the flag goes back to currentStatus.
func (s *Store) ToggleTask(ctx context.Context, id string, currentStatus bool) error {
	next := !currentStatus
	m := s.begin(KindToggle, id, func(st State) State {
		st.Tasks = withCompleted(st.Tasks, id, next)
		return st
	})

	if err := s.svc.SetCompleted(ctx, id, next); err != nil {
		s.logger.Error("failed to update task", "task", id, "err", err)
		s.revert(m, err, func(st State) State {
			st.Tasks = withCompleted(st.Tasks, id, currentStatus)
			return st
		})
		return err
	}

	s.confirm(m)
	return nil
}

// DeleteTask removes the task right away, then asks the backend to delete
// it. On failure the task comes back according to the rollback policy.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	var (
		previous []service.Task
		removed  []removal
	)
	m := s.begin(KindDelete, id, func(st State) State {
		previous = st.Tasks
		st.Tasks, removed = without(st.Tasks, id)
		return st
	})

	if err := s.svc.DeleteTask(ctx, id); err != nil {
		s.logger.Error("failed to delete task", "task", id, "err", err)
		s.revert(m, err, func(st State) State {
			if s.policy == RollbackMerge {
				st.Tasks = reinsert(st.Tasks, removed)
			} else {
				st.Tasks = previous
			}
			return st
		})
		return err
	}

	s.confirm(m)
	return nil
}

// begin registers a pending mutation and applies its local change in the
// same update.
func (s *Store) begin(kind Kind, taskID string, apply func(State) State) *Mutation {
	var m *Mutation
	s.update(func(st State) State {
		s.nextMut++
		m = &Mutation{ID: s.nextMut, Kind: kind, TaskID: taskID, Phase: PhasePending}
		s.pending = append(s.pending, m)
		return apply(st)
	})
	s.trace(*m)
	return m
}

// confirm settles m without touching state, so listeners are not notified.
func (s *Store) confirm(m *Mutation) {
	s.mu.Lock()
	s.removePendingLocked(m.ID)
	m.Phase = PhaseConfirmed
	settled := *m
	s.mu.Unlock()
	s.trace(settled)
}

func (s *Store) revert(m *Mutation, err error, undo func(State) State) {
	var settled Mutation
	s.update(func(st State) State {
		s.removePendingLocked(m.ID)
		m.Phase = PhaseReverted
		m.Err = err
		settled = *m
		return undo(st)
	})
	s.trace(settled)
}

func (s *Store) removePendingLocked(id uint64) {
	s.pending = slices.DeleteFunc(s.pending, func(p *Mutation) bool {
		return p.ID == id
	})
}

func (s *Store) trace(m Mutation) {
	s.logger.Debug("mutation", "id", m.ID, "kind", string(m.Kind), "task", m.TaskID, "phase", m.Phase.String())
	if s.hook != nil {
		s.hook(m)
	}
}
