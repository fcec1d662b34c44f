package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrIncompleteSession indicates a login attempt missing the user or credential.
	ErrIncompleteSession = errors.New("session: user and credential are both required")

	noOpLogger = zap.NewNop()
)

// UserProfile identifies the authenticated user. Beyond ID (used for comment
// ownership) the fields are opaque display data.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session pairs the current user with the bearer credential sent on every
// protected request. The credential is present iff the user is present.
type Session struct {
	User  *UserProfile `json:"user"`
	Token string       `json:"token"`
}

// Authenticated reports whether the session holds a usable identity.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// ChangeHook observes session transitions; the console uses it to switch views.
type ChangeHook func(Session)

// Store owns the session: it is the only mutator of the credential, persists
// every change to a JSON file, and rehydrates once at startup. Services read
// the credential through Token(), never through ambient globals.
type Store struct {
	mu       sync.RWMutex
	path     string
	current  Session
	restored bool
	hooks    []ChangeHook
	logger   *zap.Logger
}

// NewStore constructs a session store persisting to the given file path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = noOpLogger
	}
	return &Store{path: path, logger: logger}
}

// OnChange registers a hook fired after every login/logout transition.
// Hooks must be registered before the store is shared across goroutines.
func (s *Store) OnChange(hook ChangeHook) {
	s.hooks = append(s.hooks, hook)
}

// Restore loads the persisted session. It runs once per process; later calls
// are no-ops. A missing or corrupt file degrades to an unauthenticated session.
func (s *Store) Restore() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return s.current
	}
	s.restored = true

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("session file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return s.current
	}

	var persisted Session
	if err := json.Unmarshal(raw, &persisted); err != nil {
		s.logger.Warn("session file corrupt, starting unauthenticated", zap.Error(err))
		return s.current
	}
	if !persisted.Authenticated() {
		return s.current
	}

	s.current = persisted
	s.logger.Debug("session restored", zap.String("user_id", persisted.User.ID))
	return s.current
}

// Login installs the authenticated session and persists it. Any non-empty
// credential is accepted; its shape is the backend's concern.
func (s *Store) Login(profile UserProfile, credential string) error {
	if strings.TrimSpace(credential) == "" || strings.TrimSpace(profile.ID) == "" {
		return ErrIncompleteSession
	}

	s.mu.Lock()
	s.current = Session{User: &profile, Token: credential}
	snapshot := s.current
	s.persistLocked()
	s.mu.Unlock()

	s.fireHooks(snapshot)
	return nil
}

// Logout clears the session in memory and on disk.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = Session{}
	snapshot := s.current
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove session file", zap.Error(err))
	}
	s.mu.Unlock()

	s.fireHooks(snapshot)
}

// Current returns the session as of this call.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token implements the credential source consumed by the API client.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) persistLocked() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.logger.Warn("failed to create session directory", zap.Error(err))
		return
	}
	raw, err := json.Marshal(s.current)
	if err != nil {
		s.logger.Warn("failed to encode session", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}

func (s *Store) fireHooks(snapshot Session) {
	for _, hook := range s.hooks {
		hook(snapshot)
	}
}
