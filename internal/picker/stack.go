package picker

import (
	"errors"
	"fmt"
)

// ErrDepthExceeded reports a descent past the navigation stack's cap.
var ErrDepthExceeded = errors.New("navigation depth exceeded")

// Stack holds the parent states of the current directory.
type Stack struct {
	items []*State
	cap   int
}

// NewStack returns an empty stack holding at most depth states.
func NewStack(depth int) *Stack {
	if depth < 1 {
		depth = DefaultLimits().MaxDepth
	}
	return &Stack{cap: depth}
}

// Push stores s, or fails with ErrDepthExceeded when the stack is full.
func (st *Stack) Push(s *State) error {
	if len(st.items) >= st.cap {
		return fmt.Errorf("%w: cap %d", ErrDepthExceeded, st.cap)
	}
	st.items = append(st.items, s)
	return nil
}

// Pop removes the most recent state. ok is false on an empty stack.
func (st *Stack) Pop() (s *State, ok bool) {
	if len(st.items) == 0 {
		return nil, false
	}
	last := len(st.items) - 1
	s = st.items[last]
	st.items[last] = nil
	st.items = st.items[:last]
	return s, true
}

// Depth is the number of stored states.
func (st *Stack) Depth() int { return len(st.items) }

// Cap is the maximum depth.
func (st *Stack) Cap() int { return st.cap }

// Reset drops every stored state.
func (st *Stack) Reset() {
	clear(st.items)
	st.items = st.items[:0]
}
