package core

import "sync"

// Invocation records the arguments of a single recorded call.
type Invocation struct {
	Args []any
}

// StandIn substitutes for a module, or for any attribute of one, during
// interception. It can be called as a function, hands out further stand-ins
// for arbitrary attribute access, records every invocation, and can be reset
// to a fresh zero-invocation state without changing identity.
type StandIn struct {
	path string

	mu     sync.Mutex
	calls  []Invocation
	attrs  map[string]*StandIn
	result *StandIn
}

// NewStandIn creates a fresh, empty stand-in. The path names it in failure
// messages; attribute access extends the path with dots.
func NewStandIn(path string) *StandIn {
	return &StandIn{
		path:  path,
		attrs: make(map[string]*StandIn),
	}
}

// Attr returns the stand-in for the named attribute, creating it on first
// access. The same object is returned on every subsequent access, so
// assertions made after one operation remain valid reads of state mutated by
// a later operation.
func (s *StandIn) Attr(name string) *StandIn {
	s.mu.Lock()
	defer s.mu.Unlock()

	attr, ok := s.attrs[name]
	if !ok {
		attr = NewStandIn(s.path + "." + name)
		s.attrs[name] = attr
	}

	return attr
}

// Call records an invocation with the given arguments and returns the
// stand-in's result object: itself a stand-in, with stable identity across
// calls.
func (s *StandIn) Call(args ...any) Module {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Invocation{Args: args})

	if s.result == nil {
		s.result = NewStandIn(s.path + "()")
	}

	return s.result
}

// CallCount returns the number of recorded invocations.
func (s *StandIn) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

// Called reports whether the stand-in has recorded at least one invocation.
func (s *StandIn) Called() bool {
	return s.CallCount() > 0
}

// Calls returns a copy of the recorded invocations, oldest first.
func (s *StandIn) Calls() []Invocation {
	s.mu.Lock()
	defer s.mu.Unlock()

	calls := make([]Invocation, len(s.calls))
	copy(calls, s.calls)

	return calls
}

// Path returns the dotted name this stand-in was created under.
func (s *StandIn) Path() string {
	return s.path
}

// Reset clears the recorded invocations on this stand-in and on every
// stand-in reachable from it. Identity is preserved: attributes and result
// objects stay cached, only their histories are cleared.
func (s *StandIn) Reset() {
	s.mu.Lock()

	s.calls = nil

	children := make([]*StandIn, 0, len(s.attrs)+1)
	for _, attr := range s.attrs {
		children = append(children, attr)
	}

	if s.result != nil {
		children = append(children, s.result)
	}

	s.mu.Unlock()

	for _, child := range children {
		child.Reset()
	}
}
