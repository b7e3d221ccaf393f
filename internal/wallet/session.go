package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Session marker keys.
const (
	markerConnected = "connect"
	markerLastUsed  = "preConnectWallet"
	markerScope     = "session"
)

// SessionEnv overrides the terminal session key.
const SessionEnv = "BURGERCTL_SESSION"

// TerminalSessionKey identifies the current terminal session: the machine
// boot plus the parent shell. Markers written under one key are invisible
// to every other session, so a new terminal or a reboot starts clean.
func TerminalSessionKey() string {
	if k := os.Getenv(SessionEnv); k != "" {
		return k
	}
	boot, _ := os.ReadFile("/proc/sys/kernel/random/boot_id")
	return strings.TrimSpace(string(boot)) + ":" + strconv.Itoa(os.Getppid())
}

// Session persists the advisory reconnection markers: whether a wallet was
// connected and which one was used last. A nil *Session stores nothing.
type Session struct {
	mu    sync.Mutex
	path  string
	scope string
}

// NewSession returns markers stored at path, shared by every session.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// NewScopedSession returns markers stored at path that only read back under
// the same key, usually TerminalSessionKey().
func NewScopedSession(path, key string) *Session {
	return &Session{path: path, scope: key}
}

// MarkConnected records name as connected and last used.
func (s *Session) MarkConnected(name string) {
	s.update(func(m map[string]string) {
		m[markerConnected] = "true"
		m[markerLastUsed] = name
	})
}

// MarkLastUsed records name as the last used wallet.
func (s *Session) MarkLastUsed(name string) {
	s.update(func(m map[string]string) { m[markerLastUsed] = name })
}

// Connected reports the "was connected" flag.
func (s *Session) Connected() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[markerConnected] == "true"
}

// LastUsed returns the last used wallet name or "".
func (s *Session) LastUsed() string {
	if s == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[markerLastUsed]
}

// Clear removes both markers.
func (s *Session) Clear() {
	s.update(func(m map[string]string) {
		delete(m, markerConnected)
		delete(m, markerLastUsed)
	})
}

func (s *Session) update(fn func(map[string]string)) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load()
	fn(m)
	_ = s.save(m) // best-effort; markers are hints
}

// load returns an empty map (never nil) on any error.
func (s *Session) load() map[string]string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	if m[markerScope] != s.scope {
		return make(map[string]string)
	}
	return m
}

func (s *Session) save(m map[string]string) error {
	delete(m, markerScope)
	if len(m) == 0 {
		err := os.Remove(s.path)
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if s.scope != "" {
		m[markerScope] = s.scope
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
