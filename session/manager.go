package session

import (
	"context"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/wippyai/igbinary/codec"
	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

// Session is one loaded session. It is not safe for concurrent use.
type Session struct {
	vars *value.Array
	ID   string
	// sum fingerprints the data as read, or as last written.
	sum    [32]byte
	stored bool
}

// Vars returns the session variables. Changes are saved by Manager.Commit.
func (s *Session) Vars() *value.Array { return s.vars }

// Get returns the variable name.
func (s *Session) Get(name string) (value.Value, bool) {
	return s.vars.Get(value.StrKey(name))
}

// Set stores v under name.
func (s *Session) Set(name string, v value.Value) {
	s.vars.Set(value.StrKey(name), v)
}

// Manager loads and saves sessions through a Store.
type Manager struct {
	store Store
	log   *zap.Logger
	opts  []codec.Option
}

// NewManager returns a manager over store. opts configure the codec used for
// session data.
func NewManager(store Store, opts ...codec.Option) *Manager {
	log := codec.NewDecoder(opts...).Options().Logger
	if log == nil {
		log = codec.Logger()
	}
	return &Manager{store: store, log: log, opts: opts}
}

// Start loads session id. A missing session starts empty. Stored data that
// cannot be decoded is discarded with a warning and the session starts empty.
func (m *Manager) Start(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, errors.InvalidInput(errors.PhaseSession, "empty session id")
	}
	s := &Session{ID: id, vars: value.NewArray()}

	data, err := m.store.Read(ctx, id)
	switch {
	case errors.IsKind(err, errors.KindNotFound):
		return s, nil
	case err != nil:
		return nil, errors.Wrap(errors.PhaseSession, errors.KindStorageFailure, err, "read session "+id)
	}

	s.sum = blake3.Sum256(data)
	s.stored = true
	vars, err := Decode(data, m.opts...)
	if err != nil {
		m.log.Warn("failed to decode session data, no data available",
			zap.String("session", id),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return s, nil
	}
	s.vars = vars
	return s, nil
}

// Commit writes s back to the store unless its encoded form is identical to
// what was read.
func (m *Manager) Commit(ctx context.Context, s *Session) error {
	data, err := Encode(s.vars, m.opts...)
	if err != nil {
		return err
	}
	sum := blake3.Sum256(data)
	if s.stored && sum == s.sum {
		m.log.Debug("session unchanged, skipping write", zap.String("session", s.ID))
		return nil
	}
	if err := m.store.Write(ctx, s.ID, data); err != nil {
		return errors.Wrap(errors.PhaseSession, errors.KindStorageFailure, err, "write session "+s.ID)
	}
	s.sum = sum
	s.stored = true
	return nil
}

// Destroy removes s from the store and clears its variables.
func (m *Manager) Destroy(ctx context.Context, s *Session) error {
	if err := m.store.Destroy(ctx, s.ID); err != nil {
		return errors.Wrap(errors.PhaseSession, errors.KindStorageFailure, err, "destroy session "+s.ID)
	}
	s.vars = value.NewArray()
	s.stored = false
	return nil
}
