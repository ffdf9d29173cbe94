package domain

// Transition is one edge of a status graph: action moves From to To when
// performed by one of Roles.
type Transition[S ~string, A ~string] struct {
	From   S
	Action A
	To     S
	Roles  []Role
}

type edgeKey[S ~string, A ~string] struct {
	from   S
	action A
}

// StateMachine is an actor-aware status graph shared by hostels, bookings
// and complaints.
type StateMachine[S ~string, A ~string] struct {
	edges map[edgeKey[S, A]]Transition[S, A]
}

func NewStateMachine[S ~string, A ~string](transitions ...Transition[S, A]) *StateMachine[S, A] {
	m := &StateMachine[S, A]{edges: make(map[edgeKey[S, A]]Transition[S, A], len(transitions))}
	for _, t := range transitions {
		m.edges[edgeKey[S, A]{from: t.From, action: t.Action}] = t
	}
	return m
}

// Next resolves (from, action, role) to the target status. A missing edge
// yields ErrInvalidTransition; an edge the role may not take yields ErrForbidden.
func (m *StateMachine[S, A]) Next(from S, action A, role Role) (S, error) {
	t, ok := m.edges[edgeKey[S, A]{from: from, action: action}]
	if !ok {
		return from, ErrInvalidTransition
	}
	for _, r := range t.Roles {
		if r == role {
			return t.To, nil
		}
	}
	return from, ErrForbidden
}

// Terminal reports whether no action leaves s.
func (m *StateMachine[S, A]) Terminal(s S) bool {
	for k := range m.edges {
		if k.from == s {
			return false
		}
	}
	return true
}
