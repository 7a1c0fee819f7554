package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/stacknav/internal/backend"
)

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

// applyBackendEvent only records the notice; lists are reloaded on request
// so the cursor never jumps under the user.
func (m *Model) applyBackendEvent(evt backend.Event) {
	switch evt.Kind {
	case backend.KindError:
		if evt.Err != nil {
			m.backendLastErr = evt.Err.Error()
		}
	case backend.KindChanged:
		m.backendLastErr = ""
		m.stale = true
	}
}
