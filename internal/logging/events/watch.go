package events

import "github.com/atomicstack/stacknav/internal/logging"

type WatchTracer struct{}

var Watch = WatchTracer{}

func (WatchTracer) Change(from, to int64) {
	logging.Trace("watch.change", map[string]interface{}{"from": from, "to": to})
}

func (WatchTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("watch.error", map[string]interface{}{"error": err.Error()})
}
