package state

// Viewport is the first visible row of a scrolled list.
type Viewport struct {
	Offset int
}

// Ensure adjusts the offset so the selected row stays visible. A negative
// selected value means nothing is selected; the offset is then only bounded.
func (v *Viewport) Ensure(selected, total, maxVisible int) {
	if total == 0 || maxVisible <= 0 {
		v.Offset = 0
		return
	}
	maxOffset := total - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.Offset > maxOffset {
		v.Offset = maxOffset
	}
	if v.Offset < 0 {
		v.Offset = 0
	}
	if selected < 0 {
		return
	}
	if selected >= total {
		selected = total - 1
	}
	if selected < v.Offset {
		v.Offset = selected
	}
	upper := v.Offset + maxVisible - 1
	if selected > upper {
		v.Offset = selected - maxVisible + 1
		if v.Offset > maxOffset {
			v.Offset = maxOffset
		}
	}
}

// Window returns the visible [start, end) range for total rows.
func (v *Viewport) Window(total, maxVisible int) (int, int) {
	if maxVisible <= 0 || total <= maxVisible {
		return 0, total
	}
	start := v.Offset
	if start < 0 {
		start = 0
	}
	if start+maxVisible > total {
		start = total - maxVisible
	}
	return start, start + maxVisible
}
