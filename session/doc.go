// Package session stores a set of named variables as one serialized stream.
//
// Session data is a single sparse array keyed by variable name. Encode and
// Decode convert between that array and bytes; Manager loads a session from
// a caller-supplied Store and writes it back only when its encoded form
// changed since it was read.
//
//	m := session.NewManager(session.NewMemoryStore())
//	s, err := m.Start(ctx, id)
//	s.Set("counter", value.Int(1))
//	err = m.Commit(ctx, s)
package session
