package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tasksync/internal/store"
)

// stateFeed hands store states to the program without blocking the store.
// Only the latest undelivered state is kept; every state is complete, so
// skipping an older one loses nothing.
type stateFeed struct {
	ch chan store.State
}

func newStateFeed() *stateFeed {
	return &stateFeed{ch: make(chan store.State, 1)}
}

// push is a store.Listener. Deliveries are serialized by the store, so
// there is a single producer.
func (f *stateFeed) push(st store.State) {
	for {
		select {
		case f.ch <- st:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

func waitForState(f *stateFeed) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-f.ch)
	}
}
