package memstore

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
)

// condition is a Starlark expression over the instance's properties.
// Triggers and bools are exposed as bool, numbers as float.
type condition struct {
	src string
}

func compileCondition(src string) (*condition, error) {
	if _, err := syntax.ParseExpr("condition", src, 0); err != nil {
		return nil, fmt.Errorf("parse condition: %w", err)
	}
	return &condition{src: src}, nil
}

func (c *condition) eval(inst *instance) (bool, error) {
	env := make(starlark.StringDict, len(inst.tpl.slots))
	for name, slot := range inst.tpl.slots {
		v := inst.values[slot]
		switch inst.tpl.kinds[slot] {
		case fsmdata.PropertyNumber:
			env[name] = starlark.Float(v)
		default:
			env[name] = starlark.Bool(v != 0)
		}
	}

	thread := &starlark.Thread{Name: "fsm-condition"}
	out, err := starlark.Eval(thread, "condition", c.src, env)
	if err != nil {
		return false, err
	}
	return bool(out.Truth()), nil
}
