package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atomicstack/stacknav/internal/logging"
	"github.com/atomicstack/stacknav/internal/logging/events"
	uistate "github.com/atomicstack/stacknav/internal/ui/state"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	events.Key.Press(keyMsg.String(), m.nav.Mode().String())
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		events.Key.Quit(keyMsg.String())
		return tea.Quit
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.applyLayout()
		return nil
	case key.Matches(keyMsg, m.keys.Reload):
		m.reload()
		return nil
	case key.Matches(keyMsg, m.keys.Close) && m.nav.Mode() == uistate.BrowsingStacks:
		events.Key.Quit("escape")
		return tea.Quit
	}
	input := m.navKey(keyMsg)
	if input == uistate.KeyNone {
		return nil
	}
	hint, err := m.nav.HandleKey(m.ctx, input)
	if err != nil {
		logging.Error(err)
		m.errMsg = err.Error()
		return nil
	}
	if hint == uistate.Render {
		m.errMsg = ""
		m.forceClearInfo()
		m.syncViewports()
	}
	return nil
}

func (m *Model) navKey(msg tea.KeyMsg) uistate.Key {
	switch {
	case key.Matches(msg, m.keys.Up):
		return uistate.KeyUp
	case key.Matches(msg, m.keys.Down):
		return uistate.KeyDown
	case key.Matches(msg, m.keys.Enter):
		return uistate.KeyEnter
	case key.Matches(msg, m.keys.Back):
		return uistate.KeyEscape
	case key.Matches(msg, m.keys.Home):
		return uistate.KeyHome
	case key.Matches(msg, m.keys.End):
		return uistate.KeyEnd
	case key.Matches(msg, m.keys.PageUp):
		return uistate.KeyPageUp
	case key.Matches(msg, m.keys.PageDown):
		return uistate.KeyPageDown
	default:
		return uistate.KeyNone
	}
}

// reload re-reads the stacks and, inside a stack, its entries. A failure
// keeps the last good lists on screen and the stale notice up.
func (m *Model) reload() {
	if err := m.nav.Reload(m.ctx); err != nil {
		logging.Error(err)
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.stale = false
	m.syncViewports()
	view := m.nav.View()
	if view.Mode == uistate.BrowsingEntries {
		m.setInfo(fmt.Sprintf("reloaded %d stacks, %d entries", len(view.Stacks), len(view.Entries)))
		return
	}
	m.setInfo(fmt.Sprintf("reloaded %d stacks", len(view.Stacks)))
}
