package stats

// Stack is a LIFO of ints. The zero value is ready to use.
type Stack struct {
	items []int
}

// Push adds v on top.
func (s *Stack) Push(v int) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top value; ok is false when empty.
func (s *Stack) Pop() (v int, ok bool) {
	if len(s.items) == 0 {
		return 0, false
	}
	v = s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return v, true
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (int, bool) {
	if len(s.items) == 0 {
		return 0, false
	}
	return s.items[len(s.items)-1], true
}

func (s *Stack) Len() int { return len(s.items) }

// Values returns a copy of the contents, bottom first.
func (s *Stack) Values() []int {
	out := make([]int, len(s.items))
	copy(out, s.items)
	return out
}

// StackMean is Mean over the stack contents.
func StackMean(s *Stack, round bool) float64 {
	return Mean(s.items, round)
}

// DefaultStack returns the sample stack used by the CLI.
func DefaultStack() *Stack {
	s := &Stack{}
	for _, v := range []int{7, 9, 8, 3, 2, 0, 4, 6, 2, 21} {
		s.Push(v)
	}
	return s
}
