package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/scenebridge/internal/core/fsm"
	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
	"github.com/zeusync/scenebridge/internal/core/native"
	"github.com/zeusync/scenebridge/internal/core/scene"
	"github.com/zeusync/scenebridge/internal/core/script/luascript"
)

var ErrInvalidFixture = errors.New("invalid scene fixture")

// SceneFixture describes a scene to build on a Host.
//
//	name: demo
//	objects:
//	  - name: lamp
//	    components: [Transform]
//	    scripts:
//	      - |
//	        function update(self, dt) end
//	    children: [...]
//	machines:
//	  - template: lamp
//	    set: {powered: true}
type SceneFixture struct {
	Name     string           `yaml:"name" validate:"required"`
	Objects  []ObjectFixture  `yaml:"objects" validate:"dive"`
	Machines []MachineFixture `yaml:"machines" validate:"dive"`
}

type ObjectFixture struct {
	Name       string          `yaml:"name" validate:"required"`
	Inactive   bool            `yaml:"inactive"`
	Components []string        `yaml:"components" validate:"dive,required"`
	Scripts    []string        `yaml:"scripts" validate:"dive,required"`
	Children   []ObjectFixture `yaml:"children" validate:"dive"`
}

// MachineFixture creates one state machine instance from a loaded template and
// seeds its properties. Values are bools or numbers.
type MachineFixture struct {
	Template string         `yaml:"template" validate:"required"`
	Set      map[string]any `yaml:"set"`
}

// LoadFixture decodes and validates a fixture.
func LoadFixture(r io.Reader) (*SceneFixture, error) {
	var f SceneFixture
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scene fixture: %w", err)
	}
	if err := validator.New().Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	return &f, nil
}

func LoadFixtureFile(path string) (*SceneFixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadFixture(file)
}

// LoadTemplates registers every FSM definition file with the host.
func (h *Host) LoadTemplates(paths ...string) ([]*fsm.Template, error) {
	out := make([]*fsm.Template, 0, len(paths))
	for _, p := range paths {
		def, err := fsmdata.LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		tpl, err := h.fsm.LoadTemplate(def)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", p, err)
		}
		out = append(out, tpl)
	}
	return out, nil
}

// Build creates the fixture's scene, objects and machines. Templates named by
// machines must already be loaded.
func (h *Host) Build(f *SceneFixture) (*scene.Scene, []*fsm.Instance, error) {
	s := h.CreateScene(f.Name)
	for i := range f.Objects {
		if err := h.buildObject(s, 0, &f.Objects[i]); err != nil {
			return s, nil, err
		}
	}

	machines := make([]*fsm.Instance, 0, len(f.Machines))
	for _, m := range f.Machines {
		inst, err := h.buildMachine(m)
		if err != nil {
			return s, machines, err
		}
		machines = append(machines, inst)
	}
	return s, machines, nil
}

func (h *Host) buildObject(s *scene.Scene, parent native.ObjectID, f *ObjectFixture) error {
	obj := s.Object(h.engine.CreateObject(s.ID(), f.Name, parent))
	if f.Inactive {
		obj.SetActive(false)
	}
	for _, name := range f.Components {
		if _, err := obj.AddComponentNamed(name); err != nil {
			return fmt.Errorf("object %q: %w", f.Name, err)
		}
	}
	for _, src := range f.Scripts {
		script, err := scene.AddComponent[*luascript.Script](obj)
		if err != nil {
			return fmt.Errorf("object %q: %w", f.Name, err)
		}
		if err := script.Load(src); err != nil {
			return fmt.Errorf("object %q: %w", f.Name, err)
		}
	}
	for i := range f.Children {
		if err := h.buildObject(s, obj.ID(), &f.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) buildMachine(m MachineFixture) (*fsm.Instance, error) {
	tpl := h.fsm.TemplateByName(m.Template)
	if tpl == nil {
		return nil, fmt.Errorf("%w: %q", fsm.ErrUnknownTemplate, m.Template)
	}
	inst, err := h.fsm.CreateInstance(tpl)
	if err != nil {
		return nil, err
	}
	for name, v := range m.Set {
		switch val := v.(type) {
		case bool:
			inst.SetBool(name, val)
		case int:
			inst.SetNumber(name, float32(val))
		case float64:
			inst.SetNumber(name, float32(val))
		default:
			return inst, fmt.Errorf("%w: machine %q property %q has unsupported value %v", ErrInvalidFixture, m.Template, name, v)
		}
	}
	return inst, nil
}
