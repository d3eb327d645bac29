package fsm

// NodeHandler receives the entry and exit notifications of one node.
type NodeHandler interface {
	OnStateEntry(inst *Instance)
	OnStateExit(inst *Instance)
}

// HandlerFuncs adapts plain functions to NodeHandler. Nil functions are
// skipped.
type HandlerFuncs struct {
	Entry func(inst *Instance)
	Exit  func(inst *Instance)
}

func (h HandlerFuncs) OnStateEntry(inst *Instance) {
	if h.Entry != nil {
		h.Entry(inst)
	}
}

func (h HandlerFuncs) OnStateExit(inst *Instance) {
	if h.Exit != nil {
		h.Exit(inst)
	}
}
