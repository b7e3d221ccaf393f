package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempSession(t *testing.T) (*Session, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	return NewSession(path), path
}

func TestSessionEmpty(t *testing.T) {
	s, _ := tempSession(t)
	assert.False(t, s.Connected())
	assert.Empty(t, s.LastUsed())
}

func TestSessionMarkConnected(t *testing.T) {
	s, path := tempSession(t)
	s.MarkConnected("Neoline")
	assert.True(t, s.Connected())
	assert.Equal(t, "Neoline", s.LastUsed())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionMarkLastUsedKeepsFlag(t *testing.T) {
	s, _ := tempSession(t)
	s.MarkLastUsed("O3")
	assert.False(t, s.Connected())
	assert.Equal(t, "O3", s.LastUsed())

	s.MarkConnected("O3")
	s.MarkLastUsed("Neon")
	assert.True(t, s.Connected())
	assert.Equal(t, "Neon", s.LastUsed())
}

func TestSessionPersistsAcrossInstances(t *testing.T) {
	s, path := tempSession(t)
	s.MarkConnected("OneGate")
	assert.Equal(t, "OneGate", NewSession(path).LastUsed())
}

func TestSessionClearRemovesFile(t *testing.T) {
	s, path := tempSession(t)
	s.MarkConnected("Neoline")
	s.Clear()
	assert.False(t, s.Connected())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSessionCorruptFileIsEmpty(t *testing.T) {
	s, path := tempSession(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	assert.Empty(t, s.LastUsed())
	s.MarkLastUsed("O3")
	assert.Equal(t, "O3", s.LastUsed())
}

func TestNilSession(t *testing.T) {
	var s *Session
	assert.NotPanics(t, func() {
		s.MarkConnected("x")
		s.Clear()
		assert.False(t, s.Connected())
		assert.Empty(t, s.LastUsed())
	})
}

func TestScopedSessionIgnoresOtherSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	first := NewScopedSession(path, "boot-a:100")
	first.MarkConnected("Neon")
	assert.Equal(t, "Neon", first.LastUsed())
	assert.True(t, first.Connected())

	other := NewScopedSession(path, "boot-a:200")
	assert.Empty(t, other.LastUsed(), "another terminal")
	assert.False(t, other.Connected())

	rebooted := NewScopedSession(path, "boot-b:100")
	assert.Empty(t, rebooted.LastUsed(), "after a reboot")

	other.MarkLastUsed("O3")
	assert.Equal(t, "O3", other.LastUsed())
	assert.False(t, other.Connected(), "markers of the previous session are dropped")
	assert.Empty(t, first.LastUsed())
}

func TestScopedSessionClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewScopedSession(path, "k")
	s.MarkConnected("Neoline")
	s.Clear()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestTerminalSessionKey(t *testing.T) {
	t.Setenv(SessionEnv, "")
	assert.Equal(t, TerminalSessionKey(), TerminalSessionKey())
	assert.Contains(t, TerminalSessionKey(), ":")

	t.Setenv(SessionEnv, "ci-run-7")
	assert.Equal(t, "ci-run-7", TerminalSessionKey())
}
