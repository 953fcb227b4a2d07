// Package auth owns the session lifecycle: credential exchange, atomic
// persistence of the token+user pair in the user config dir, and the global
// teardown that runs when the backend rejects a token.
package auth

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kginsights/datapuur/internal/domain"
)

const (
	sessionFile = "session.yaml"
	stateFile   = "state.yaml"
)

// clientState holds the one-shot markers shared between commands: the flag
// the login flow reads after a forced teardown, the path to resume, and the
// voluntary-logout marker that distinguishes "you logged out" from "your
// session expired" in shared output.
type clientState struct {
	AuthExpired bool   `yaml:"auth_expired,omitempty"`
	ReturnPath  string `yaml:"return_path,omitempty"`
	LoggingOut  bool   `yaml:"logging_out,omitempty"`
}

// Store persists the session and client state under a config directory.
// Token and user live in one file written atomically, so they are always
// set and cleared together.
type Store struct {
	mu  sync.Mutex
	dir string
}

// NewStore creates the config directory if needed and returns a store over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create config dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

// Session loads the persisted session, returning nil when none is stored.
// Capabilities are computed on load.
func (s *Store) Session() (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, sessionFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read session file")
	}
	var session domain.Session
	if err := yaml.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "decode session file")
	}
	if !session.Valid() {
		// A half-written record violates the set-together invariant; treat
		// it as absent.
		return nil, nil
	}
	session.Capabilities, _ = domain.ParseCapabilities(session.User.Permissions)
	return &session, nil
}

// Token returns the stored bearer token, or "" when anonymous. Implements
// api.TokenSource.
func (s *Store) Token() string {
	session, err := s.Session()
	if err != nil || session == nil {
		return ""
	}
	return session.Token
}

// Save persists the session atomically: the record lands via temp file and
// rename, so a crash can never leave a token without its user or vice versa.
func (s *Store) Save(session *domain.Session) error {
	if !session.Valid() {
		return errors.New("refusing to persist incomplete session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	return s.writeAtomic(sessionFile, data)
}

// Clear removes the persisted session. Missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dir, sessionFile))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "clear session")
	}
	return nil
}

// SetAuthExpired records the forced-teardown marker along with the path the
// user was on, for the login flow to pick up.
func (s *Store) SetAuthExpired(returnPath string) error {
	return s.updateState(func(st *clientState) {
		st.AuthExpired = true
		st.ReturnPath = returnPath
	})
}

// AuthExpired reads the forced-teardown marker without clearing it, so the
// login flow can explain the situation before the credentials are accepted.
func (s *Store) AuthExpired() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st clientState
	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "read state file")
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return false, errors.Wrap(err, "decode state file")
	}
	return st.AuthExpired, nil
}

// ConsumeAuthExpired reads and clears the auth-expired flag in one step. The
// saved return path comes back with it.
func (s *Store) ConsumeAuthExpired() (expired bool, returnPath string, err error) {
	err = s.updateState(func(st *clientState) {
		expired = st.AuthExpired
		returnPath = st.ReturnPath
		st.AuthExpired = false
		st.ReturnPath = ""
	})
	return expired, returnPath, err
}

// SetLoggingOut records that the upcoming session teardown is voluntary.
func (s *Store) SetLoggingOut() error {
	return s.updateState(func(st *clientState) { st.LoggingOut = true })
}

// ConsumeLoggingOut reads and clears the voluntary-logout marker.
func (s *Store) ConsumeLoggingOut() (loggingOut bool, err error) {
	err = s.updateState(func(st *clientState) {
		loggingOut = st.LoggingOut
		st.LoggingOut = false
	})
	return loggingOut, err
}

func (s *Store) updateState(mutate func(*clientState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st clientState
	data, err := os.ReadFile(filepath.Join(s.dir, stateFile))
	if err == nil {
		if err := yaml.Unmarshal(data, &st); err != nil {
			return errors.Wrap(err, "decode state file")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "read state file")
	}

	mutate(&st)

	out, err := yaml.Marshal(&st)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	return s.writeAtomic(stateFile, out)
}

// writeAtomic writes via temp file + rename. Callers hold s.mu.
func (s *Store) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return errors.Wrapf(err, "rename into %s", name)
	}
	return nil
}
