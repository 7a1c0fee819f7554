package events

import "github.com/atomicstack/stacknav/internal/logging"

type StoreTracer struct{}

var Store = StoreTracer{}

func (StoreTracer) Open(kind, path string) {
	logging.Trace("store.open", map[string]interface{}{"kind": kind, "path": path})
}

func (StoreTracer) Write(op string, id int64) {
	logging.Trace("store.write", map[string]interface{}{"op": op, "id": id})
}

func (StoreTracer) Error(op string, err error) {
	if err == nil {
		return
	}
	logging.Trace("store.error", map[string]interface{}{"op": op, "error": err.Error()})
}
