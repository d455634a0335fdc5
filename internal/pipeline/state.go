package pipeline

import "sort"

// State is the record of fields threaded through the steps of one run.
// Fields are only ever added or overwritten, never removed.
type State map[string]string

// Update is the partial set of fields a step returns.
type Update map[string]string

// NewState creates a state holding the given fields
func NewState(fields map[string]string) State {
	s := make(State, len(fields))
	for k, v := range fields {
		s[k] = v
	}
	return s
}

// Get returns the value of a field, or "" when it is unset
func (s State) Get(key string) string {
	return s[key]
}

// Clone returns a shallow copy of the state
func (s State) Clone() State {
	return NewState(s)
}

// Merge applies an update in place, last write wins
func (s State) Merge(u Update) {
	for k, v := range u {
		s[k] = v
	}
}

// Keys returns the field names of the update in sorted order
func (u Update) Keys() []string {
	keys := make([]string, 0, len(u))
	for k := range u {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// celVars exposes the state to guard expressions as `state`
func (s State) celVars() map[string]interface{} {
	fields := make(map[string]interface{}, len(s))
	for k, v := range s {
		fields[k] = v
	}
	return map[string]interface{}{"state": fields}
}
