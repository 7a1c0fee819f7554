package state

// Mode is the navigator's focus scope.
type Mode int

const (
	BrowsingStacks Mode = iota
	BrowsingEntries
	// Command is reserved for free-text command entry and is never entered.
	Command
)

func (m Mode) String() string {
	switch m {
	case BrowsingStacks:
		return "stacks"
	case BrowsingEntries:
		return "entries"
	case Command:
		return "command"
	default:
		return "unknown"
	}
}

// Key is a navigation input already decoded from the terminal.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEnter:
		return "enter"
	case KeyEscape:
		return "esc"
	case KeyHome:
		return "home"
	case KeyEnd:
		return "end"
	case KeyPageUp:
		return "pgup"
	case KeyPageDown:
		return "pgdown"
	default:
		return "none"
	}
}

// RenderHint tells the shell whether the last input changed what is shown.
type RenderHint int

const (
	NoChange RenderHint = iota
	Render
)

func hint(changed bool) RenderHint {
	if changed {
		return Render
	}
	return NoChange
}
