package reducer

import "github.com/vvka-141/dsdist/internal/table"

// OrderedSet keeps distinct values in first-insertion order.
// Membership is decided by table.Value.Key, so values that are equal after
// coercion (5, int8(5), 5.0) occupy one slot.
type OrderedSet struct {
	seen   map[string]struct{}
	values []table.Value
}

// NewOrderedSet returns an empty set.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add inserts v unless an equal value is present. It reports whether v was added.
func (s *OrderedSet) Add(v table.Value) bool {
	key := v.Key()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Len returns the number of distinct values.
func (s *OrderedSet) Len() int { return len(s.values) }

// Reduce collapses the set: no values reports ok=false, one value becomes a
// scalar and several become an ordered list.
func (s *OrderedSet) Reduce() (value interface{}, ok bool, err error) {
	switch len(s.values) {
	case 0:
		return nil, false, nil
	case 1:
		v, err := s.values[0].JSON()
		return v, err == nil, err
	}

	list := make([]interface{}, len(s.values))
	for i, v := range s.values {
		j, err := v.JSON()
		if err != nil {
			return nil, false, err
		}
		list[i] = j
	}
	return list, true, nil
}
