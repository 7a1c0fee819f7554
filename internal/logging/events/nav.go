package events

import "github.com/atomicstack/stacknav/internal/logging"

type NavTracer struct{}

type KeyTracer struct{}

var (
	Nav = NavTracer{}
	Key = KeyTracer{}
)

func (NavTracer) Cursor(list string, index int) {
	logging.Trace("nav.cursor", map[string]interface{}{"list": list, "index": index})
}

func (NavTracer) Enter(stackID int64, name string, entries int) {
	logging.Trace("nav.enter", map[string]interface{}{
		"stack":   stackID,
		"name":    name,
		"entries": entries,
	})
}

func (NavTracer) Escape(stackID int64) {
	logging.Trace("nav.escape", map[string]interface{}{"stack": stackID})
}

func (NavTracer) Load(kind string, stackID int64, count int) {
	payload := map[string]interface{}{"kind": kind, "count": count}
	if stackID != 0 {
		payload["stack"] = stackID
	}
	logging.Trace("nav.load", payload)
}

func (NavTracer) LoadError(kind string, stackID int64, err error) {
	if err == nil {
		return
	}
	payload := map[string]interface{}{"kind": kind, "error": err.Error()}
	if stackID != 0 {
		payload["stack"] = stackID
	}
	logging.Trace("nav.load-error", payload)
}

func (KeyTracer) Press(key, mode string) {
	logging.Trace("key.press", map[string]interface{}{"key": key, "mode": mode})
}

func (KeyTracer) Quit(reason string) {
	logging.Trace("key.quit", map[string]interface{}{"reason": reason})
}
