package binparse

import "github.com/tylerk07/hexgrammar/internal/model"

// scope is the ordered name -> value map of already-parsed siblings,
// chained to a parent scope searched once on a local miss (spec.md §9
// "back-references for length resolution").
type scope struct {
	values map[string]model.Value
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{values: make(map[string]model.Value), parent: parent}
}

func (s *scope) set(name string, v model.Value) {
	s.values[name] = v
}

// lookup resolves name in the local scope, then the parent scope once.
func (s *scope) lookup(name string) (model.Value, bool) {
	if s == nil {
		return model.Value{}, false
	}
	if v, ok := s.values[name]; ok {
		return v, true
	}
	if s.parent != nil {
		if v, ok := s.parent.values[name]; ok {
			return v, true
		}
	}
	return model.Value{}, false
}

// intLookup adapts scope resolution to evalexpr's identifier-lookup shape.
func (s *scope) intLookup(name string) (int64, bool) {
	v, ok := s.lookup(name)
	if !ok {
		return 0, false
	}
	return v.AsInt64()
}
