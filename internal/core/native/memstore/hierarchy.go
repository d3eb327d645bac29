package memstore

import (
	"slices"

	"github.com/zeusync/scenebridge/internal/core/native"
)

func (s *Store) GetActive(scene native.SceneID, obj native.ObjectID) bool {
	if o := s.object(scene, obj); o != nil {
		return o.active
	}
	return false
}

func (s *Store) SetActive(scene native.SceneID, obj native.ObjectID, active bool) {
	if o := s.object(scene, obj); o != nil {
		o.active = active
	}
}

func (s *Store) GetName(scene native.SceneID, obj native.ObjectID) string {
	if o := s.object(scene, obj); o != nil {
		return o.name
	}
	return ""
}

func (s *Store) SetName(scene native.SceneID, obj native.ObjectID, name string) {
	if o := s.object(scene, obj); o != nil {
		o.name = name
	}
}

func (s *Store) GetParent(scene native.SceneID, obj native.ObjectID) native.ObjectID {
	if o := s.object(scene, obj); o != nil {
		return o.parent
	}
	return 0
}

// SetParent ignores unknown parents and moves that would create a cycle.
func (s *Store) SetParent(scene native.SceneID, obj native.ObjectID, parent native.ObjectID) {
	sc := s.scenes[scene]
	if sc == nil {
		return
	}
	o := sc.objects[obj]
	if o == nil || o.parent == parent {
		return
	}
	var p *object
	if parent != 0 {
		if p = sc.objects[parent]; p == nil {
			return
		}
		for cur := p; cur != nil; cur = sc.objects[cur.parent] {
			if cur.id == o.id {
				return
			}
		}
	}

	sc.detach(o)
	o.parent = parent
	if p != nil {
		p.children = append(p.children, o.id)
	} else {
		sc.roots = append(sc.roots, o.id)
	}
}

func (s *Store) GetSiblingIndex(scene native.SceneID, obj native.ObjectID) int {
	sc := s.scenes[scene]
	if sc == nil {
		return 0
	}
	o := sc.objects[obj]
	if o == nil {
		return 0
	}
	return max(slices.Index(*sc.siblings(o), o.id), 0)
}

// SetSiblingIndex rejects indices outside the sibling list.
func (s *Store) SetSiblingIndex(scene native.SceneID, obj native.ObjectID, index int) {
	sc := s.scenes[scene]
	if sc == nil {
		return
	}
	o := sc.objects[obj]
	if o == nil {
		return
	}
	list := sc.siblings(o)
	if index < 0 || index >= len(*list) {
		return
	}
	cur := slices.Index(*list, o.id)
	if cur < 0 || cur == index {
		return
	}
	*list = slices.Delete(*list, cur, cur+1)
	*list = slices.Insert(*list, index, o.id)
}

func (s *Store) GetChildCount(scene native.SceneID, obj native.ObjectID) int {
	if o := s.object(scene, obj); o != nil {
		return len(o.children)
	}
	return 0
}

func (s *Store) GetChild(scene native.SceneID, obj native.ObjectID, index int) native.ObjectID {
	o := s.object(scene, obj)
	if o == nil || index < 0 || index >= len(o.children) {
		return 0
	}
	return o.children[index]
}
