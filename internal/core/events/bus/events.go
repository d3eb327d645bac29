package bus

import "time"

// Event types published by the binding layer.
const (
	TypeObjectDestroyed  = "object.destroyed"
	TypeComponentAdded   = "component.added"
	TypeComponentRemoved = "component.removed"
	TypeFSMEntry         = "fsm.entry"
	TypeFSMExit          = "fsm.exit"
	TypeHandleStale      = "handle.stale"
)

// Wildcard is the subscription key used by SubscribeAll.
const Wildcard = "*"

type simpleEvent struct {
	typ    string
	source string
	ts     time.Time
	data   any
	meta   map[string]any
}

func (e simpleEvent) Type() string             { return e.typ }
func (e simpleEvent) Source() string           { return e.source }
func (e simpleEvent) Timestamp() time.Time     { return e.ts }
func (e simpleEvent) Data() any                { return e.data }
func (e simpleEvent) Metadata() map[string]any { return e.meta }

// NewEvent creates an Event stamped with the current time.
func NewEvent(typ, src string, data any, metadata map[string]any) Event {
	return simpleEvent{typ: typ, source: src, ts: time.Now(), data: data, meta: metadata}
}
