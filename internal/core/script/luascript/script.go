// Package luascript implements script components whose behaviour is a Lua
// chunk.
//
// A chunk may define the globals start(self), update(self, dt), stop(self)
// and validate(self). self is the owning object:
//
//	self:name()            self:set_name(s)
//	self:active()          self:set_active(b)
//	self:child_count()     self:log(msg)
package luascript

import (
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/observability/log"
	"github.com/zeusync/scenebridge/internal/core/scene"
)

const objectTypeName = "scenebridge.object"

// Script is a script component driven by a Lua state. Each component owns
// its own state.
type Script struct {
	scene.Behaviour

	state  *lua.State
	source string
}

func New() *Script {
	return &Script{}
}

// Register adds Script to the registry as a script component type.
func Register(r *scene.Registry) (native.TypeIndex, error) {
	return scene.RegisterScript(r, New)
}

// Load compiles and runs src, replacing any previous chunk. When the scene is
// already running the start hook runs immediately.
func (s *Script) Load(src string) error {
	if s.IsDestroyed() {
		s.Logger().Error("load into destroyed script", log.Error(scene.ErrStaleHandle))
		return nil
	}

	state := lua.NewState()
	lua.OpenLibraries(state)
	registerObjectType(state)
	if err := lua.DoString(state, src); err != nil {
		return fmt.Errorf("load lua script: %w", err)
	}
	s.state = state
	s.source = src

	if o := s.Object(); o != nil && !o.IsDestroyed() && o.Scene().Running() {
		s.Start()
	}
	return nil
}

// Source returns the loaded chunk.
func (s *Script) Source() string { return s.source }

func (s *Script) Start()            { s.call("start") }
func (s *Script) Update(dt float64) { s.call("update", dt) }
func (s *Script) Stop()             { s.call("stop") }
func (s *Script) OnValidate()       { s.call("validate") }

// call invokes a global hook with self and args. Missing hooks are skipped
// and Lua errors are logged.
func (s *Script) call(hook string, args ...float64) {
	if s.state == nil || s.IsDestroyed() {
		return
	}
	state := s.state
	state.Global(hook)
	if !state.IsFunction(-1) {
		state.Pop(1)
		return
	}
	state.PushUserData(s)
	lua.SetMetaTableNamed(state, objectTypeName)
	for _, a := range args {
		state.PushNumber(a)
	}
	if err := state.ProtectedCall(1+len(args), 0, 0); err != nil {
		s.Logger().Error("lua hook failed", log.String("hook", hook), log.Error(err))
		state.SetTop(0)
	}
}

func registerObjectType(state *lua.State) {
	lua.NewMetaTable(state, objectTypeName)
	state.NewTable()
	lua.SetFunctions(state, objectMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

var objectMethods = []lua.RegistryFunction{
	{Name: "name", Function: objectName},
	{Name: "set_name", Function: objectSetName},
	{Name: "active", Function: objectActive},
	{Name: "set_active", Function: objectSetActive},
	{Name: "child_count", Function: objectChildCount},
	{Name: "log", Function: objectLog},
}

func checkScript(state *lua.State) *Script {
	s, ok := lua.CheckUserData(state, 1, objectTypeName).(*Script)
	if !ok || s == nil {
		lua.Errorf(state, "invalid object")
	}
	return s
}

func objectName(state *lua.State) int {
	s := checkScript(state)
	state.PushString(s.Object().Name())
	return 1
}

func objectSetName(state *lua.State) int {
	s := checkScript(state)
	s.Object().SetName(lua.CheckString(state, 2))
	return 0
}

func objectActive(state *lua.State) int {
	s := checkScript(state)
	state.PushBoolean(s.Object().Active())
	return 1
}

func objectSetActive(state *lua.State) int {
	s := checkScript(state)
	lua.CheckType(state, 2, lua.TypeBoolean)
	s.Object().SetActive(state.ToBoolean(2))
	return 0
}

func objectChildCount(state *lua.State) int {
	s := checkScript(state)
	state.PushInteger(s.Object().ChildCount())
	return 1
}

func objectLog(state *lua.State) int {
	s := checkScript(state)
	s.Logger().Info(lua.CheckString(state, 2), log.String("source", "lua"))
	return 0
}
