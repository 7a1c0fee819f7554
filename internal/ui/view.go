package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"

	uistate "github.com/atomicstack/stacknav/internal/ui/state"
)

const (
	defaultWidth        = 80
	defaultHeight       = 24
	stackPanelFraction  = 0.25 // share of the width given to the stacks panel
	stackPanelMinWidth  = 16
	entryPanelMinWidth  = 20
	panelChromeRows     = 3 // top border, title, bottom border
	statusBodyRows      = 2 // position line + message line
	minVisibleListRows  = 1
	staleStoreNotice    = "store changed, press r to reload"
	entriesPlaceholder  = "press enter to open the selected stack"
	emptyStacksMessage  = "(no stacks)"
	emptyEntriesMessage = "(no entries)"
)

type styledLine struct {
	text          string
	style         *lipgloss.Style
	prefixStyle   *lipgloss.Style
	highlightFrom int
	raw           bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	width, _ := m.layoutSize()
	v := m.nav.View()
	rows := m.listRows()
	panelHeight := rows + panelChromeRows
	stacksWidth := stackPanelWidth(width)
	entriesWidth := width - stacksWidth

	left := renderPanel(stackPanelTitle(v), m.stackLines(v, rows, stacksWidth-2), v.StacksActive, stacksWidth, panelHeight)
	right := renderPanel(entryPanelTitle(v), m.entryLines(v, rows, entriesWidth-2), v.EntriesActive, entriesWidth, panelHeight)
	panels := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, panels, m.renderStatus(v, width))
}

func stackPanelTitle(v uistate.View) string {
	return fmt.Sprintf("Stacks (%d)", len(v.Stacks))
}

func entryPanelTitle(v uistate.View) string {
	if v.Scope == "" {
		return "Entries"
	}
	return fmt.Sprintf("Entries: %s (%d)", v.Scope, len(v.Entries))
}

func (m *Model) stackLines(v uistate.View, rows, width int) []styledLine {
	if len(v.Stacks) == 0 {
		return []styledLine{{text: emptyStacksMessage, style: styles.Empty}}
	}
	start, end := m.stackView.Window(len(v.Stacks), rows)
	lines := make([]styledLine, 0, end-start)
	for i := start; i < end; i++ {
		label := fmt.Sprintf("%s (%d)", v.Stacks[i], v.StackCounts[i])
		lines = append(lines, buildItemLine(label, i == v.StackSelected, width))
	}
	return lines
}

func (m *Model) entryLines(v uistate.View, rows, width int) []styledLine {
	if !v.EntriesActive {
		return []styledLine{{text: entriesPlaceholder, style: styles.Empty}}
	}
	if len(v.Entries) == 0 {
		return []styledLine{{text: emptyEntriesMessage, style: styles.Empty}}
	}
	start, end := m.entryView.Window(len(v.Entries), rows)
	lines := make([]styledLine, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, buildItemLine(uistate.FlattenRow(v.Entries[i]), i == v.EntrySelected, width))
	}
	return lines
}

func buildItemLine(label string, selected bool, width int) styledLine {
	indicator := "▌"
	lineStyle := styles.Item
	indicatorStyle := styles.ItemIndicator
	if selected {
		indicatorStyle = styles.SelectedItemIndicator
		lineStyle = styles.SelectedItem
	}
	fullText := indicator + " " + label
	if width > 0 {
		if pad := width - lipgloss.Width(fullText); pad > 0 {
			fullText += strings.Repeat(" ", pad)
		}
	}
	return styledLine{
		text:          fullText,
		style:         lineStyle,
		prefixStyle:   indicatorStyle,
		highlightFrom: 1, // just the ▌ character
	}
}

func renderPanel(title string, body []styledLine, active bool, width, height int) string {
	frame := styles.InactivePanel
	titleStyle := styles.PanelTitle
	if active {
		frame = styles.ActivePanel
		titleStyle = styles.ActivePanelTitle
	}
	inner := width - 2
	lines := make([]styledLine, 0, len(body)+1)
	lines = append(lines, styledLine{text: title, style: titleStyle})
	lines = append(lines, body...)
	lines = limitHeight(lines, height-2, inner)
	lines = applyWidth(lines, inner)
	return frame.Width(inner).Height(height - 2).Render(renderLines(lines))
}

func (m *Model) renderStatus(v uistate.View, width int) string {
	lines := []styledLine{m.positionLine(v), m.messageLine()}
	if m.showFooter {
		for _, row := range strings.Split(m.help.View(m.keys), "\n") {
			lines = append(lines, styledLine{text: row, raw: true})
		}
	}
	lines = applyWidth(lines, width)
	return styles.Status.Width(width).Render(renderLines(lines))
}

// positionLine summarises where the cursor is: the mode, the stack in focus
// and the selected row.
func (m *Model) positionLine(v uistate.View) styledLine {
	label := v.Mode.String()
	var detail string
	switch v.Mode {
	case uistate.BrowsingEntries:
		detail = v.Scope
		if entry, ok := m.nav.SelectedEntry(); ok {
			detail = fmt.Sprintf("%s  %d/%d  %s", v.Scope, v.EntrySelected+1, len(v.Entries), flatten(entry.Content))
		}
	default:
		if st, ok := m.nav.SelectedStack(); ok {
			detail = fmt.Sprintf("%s  %d entries", st.Name, st.Count)
		} else {
			detail = "no stack selected"
		}
	}
	if m.source != "" {
		detail += "  [" + m.source + "]"
	}
	text := label + "  " + detail
	return styledLine{
		text:          text,
		style:         styles.Footer,
		prefixStyle:   styles.StatusLabel,
		highlightFrom: len([]rune(label)),
	}
}

func (m *Model) messageLine() styledLine {
	switch {
	case m.errMsg != "":
		return styledLine{text: fmt.Sprintf("Error: %s", m.errMsg), style: styles.Error}
	case m.backendLastErr != "":
		return styledLine{text: fmt.Sprintf("Store: %s", m.backendLastErr), style: styles.Error}
	case m.stale:
		return styledLine{text: staleStoreNotice, style: styles.Info}
	}
	if info := m.currentInfo(); info != "" {
		return styledLine{text: info, style: styles.Info}
	}
	return styledLine{}
}

// flatten keeps full entry text on one row; the width limit applies later.
func flatten(content string) string {
	return strings.Join(strings.Fields(ansi.Strip(content)), " ")
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	m.applyLayout()
	return nil
}

// applyLayout pushes the current list height into the navigator and the
// viewports after a resize or a help toggle.
func (m *Model) applyLayout() {
	width, _ := m.layoutSize()
	m.help.Width = width
	m.nav.SetPageSize(m.listRows())
	m.syncViewports()
}

func (m *Model) syncViewports() {
	v := m.nav.View()
	rows := m.listRows()
	m.stackView.Ensure(v.StackSelected, len(v.Stacks), rows)
	m.entryView.Ensure(v.EntrySelected, len(v.Entries), rows)
}

func (m *Model) layoutSize() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

func (m *Model) statusRows() int {
	rows := 1 + statusBodyRows // top border
	if !m.showFooter {
		return rows
	}
	if !m.help.ShowAll {
		return rows + 1
	}
	longest := 0
	for _, group := range m.keys.FullHelp() {
		if len(group) > longest {
			longest = len(group)
		}
	}
	return rows + longest
}

// listRows is how many list items fit inside one panel.
func (m *Model) listRows() int {
	_, height := m.layoutSize()
	remain := height - m.statusRows() - panelChromeRows
	if remain < minVisibleListRows {
		return minVisibleListRows
	}
	return remain
}

func stackPanelWidth(total int) int {
	w := int(float64(total) * stackPanelFraction)
	if w < stackPanelMinWidth {
		w = stackPanelMinWidth
	}
	if total-w < entryPanelMinWidth {
		w = total - entryPanelMinWidth
	}
	if w < 4 {
		w = 4
	}
	return w
}

func limitHeight(lines []styledLine, height, width int) []styledLine {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	if height == 1 {
		return []styledLine{{text: truncateText("…", width)}}
	}
	trimmed := make([]styledLine, 0, height)
	trimmed = append(trimmed, lines[:height-1]...)
	trimmed = append(trimmed, styledLine{text: truncateText("…", width)})
	return trimmed
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		line.text = truncateText(line.text, width)
		result[i] = line
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			out[i] = text
			continue
		}
		runes := []rune(text)
		if line.highlightFrom > 0 && line.highlightFrom < len(runes) {
			head := string(runes[:line.highlightFrom])
			tail := string(runes[line.highlightFrom:])
			if line.prefixStyle != nil {
				head = line.prefixStyle.Render(head)
			}
			if line.style != nil {
				tail = line.style.Render(tail)
			}
			text = head + tail
		} else if line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText cuts text to width display cells, escape sequences included.
func truncateText(text string, width int) string {
	if width <= 0 || lipgloss.Width(text) <= width {
		return text
	}
	return truncate.StringWithTail(text, uint(width), "…")
}
