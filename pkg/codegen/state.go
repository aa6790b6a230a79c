package codegen

// State is the program-wide mutable state of one translation run.
type State struct {
	compares     int
	callSites    map[string]int
	namespace    string
	bootstrapped bool
}

// NewState returns a State with all counters at zero.
func NewState() *State {
	return &State{callSites: make(map[string]int)}
}

// NextCompare returns the next comparison ordinal and advances the counter.
// A value is never returned twice by the same State.
func (s *State) NextCompare() int {
	n := s.compares
	s.compares++
	return n
}

// NextCallSite returns the next call-site ordinal for fn and advances its
// counter.
func (s *State) NextCallSite(fn string) int {
	n := s.callSites[fn]
	s.callSites[fn] = n + 1
	return n
}

// Compares reports how many comparisons have been generated.
func (s *State) Compares() int {
	return s.compares
}

// CallSites reports how many calls to fn have been generated.
func (s *State) CallSites(fn string) int {
	return s.callSites[fn]
}

// SetNamespace replaces the namespace used for static variables.
func (s *State) SetNamespace(ns string) {
	s.namespace = ns
}

// Namespace returns the namespace of the current source unit.
func (s *State) Namespace() string {
	return s.namespace
}

// Bootstrapped reports whether the bootstrap sequence has been generated.
func (s *State) Bootstrapped() bool {
	return s.bootstrapped
}
