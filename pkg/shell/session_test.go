package shell

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(Config{
		Timeout: 10 * time.Second,
		Logger:  zerolog.New(os.Stdout).Level(zerolog.Disabled),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSessionExecute(t *testing.T) {
	t.Run("should return command output", func(t *testing.T) {
		s := newTestSession(t)

		out, err := s.Execute("echo hello", 0)

		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("should not leak marker text for output without trailing newline", func(t *testing.T) {
		s := newTestSession(t)

		out, err := s.Execute("printf 'no newline here'", 0)

		require.NoError(t, err)
		assert.Equal(t, "no newline here", out)
	})

	t.Run("should preserve exported variables between commands", func(t *testing.T) {
		s := newTestSession(t)

		_, err := s.Execute("export FOO=bar", 0)
		require.NoError(t, err)

		out, err := s.Execute("echo $FOO", 0)
		require.NoError(t, err)
		assert.Equal(t, "bar", out)
	})

	t.Run("should preserve working directory between commands", func(t *testing.T) {
		s := newTestSession(t)

		_, err := s.Execute("cd /tmp", 0)
		require.NoError(t, err)

		out, err := s.Execute("pwd", 0)
		require.NoError(t, err)
		assert.Equal(t, "/tmp", out)
	})

	t.Run("should include stderr after stdout", func(t *testing.T) {
		s := newTestSession(t)

		out, err := s.Execute("echo out; echo err >&2", 0)

		require.NoError(t, err)
		assert.Equal(t, "out\nerr", out)
	})

	t.Run("should strip the framing blank line but keep interior blanks", func(t *testing.T) {
		s := newTestSession(t)

		out, err := s.Execute("printf 'a\\n\\nb\\n'", 0)

		require.NoError(t, err)
		assert.Equal(t, "a\n\nb", out)
	})

	t.Run("should not fail on nonzero exit codes", func(t *testing.T) {
		s := newTestSession(t)

		out, err := s.Execute("ls /definitely/not/a/path", 0)

		require.NoError(t, err)
		assert.Contains(t, out, "No such file or directory")
	})

	t.Run("should return partial output on timeout", func(t *testing.T) {
		s := newTestSession(t)

		start := time.Now()
		out, err := s.Execute("echo started; sleep 30", 500*time.Millisecond)

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Contains(t, out, "started")
	})

	t.Run("should restart transparently after the process dies", func(t *testing.T) {
		s := newTestSession(t)

		_, err := s.Execute("exit 42", 0)
		require.NoError(t, err)

		out, err := s.Execute("echo revived", 0)
		require.NoError(t, err)
		assert.Contains(t, out, "revived")
	})
}

func TestSessionRestart(t *testing.T) {
	t.Run("should discard shell state", func(t *testing.T) {
		s := newTestSession(t)

		_, err := s.Execute("export FOO=bar", 0)
		require.NoError(t, err)

		msg, err := s.Restart()
		require.NoError(t, err)
		assert.Equal(t, "Bash session restarted.", msg)

		out, err := s.Execute("echo ${FOO:-empty}", 0)
		require.NoError(t, err)
		assert.Equal(t, "empty", out)
	})
}

func TestSessionClose(t *testing.T) {
	t.Run("should be idempotent", func(t *testing.T) {
		s := newTestSession(t)

		s.Close()
		s.Close()
	})

	t.Run("should allow execute after close via auto-restart", func(t *testing.T) {
		s := newTestSession(t)
		s.Close()

		out, err := s.Execute("echo back", 0)

		require.NoError(t, err)
		assert.Equal(t, "back", out)
	})
}

func TestMarkerUniqueness(t *testing.T) {
	t.Run("should not treat ordinary output as a marker", func(t *testing.T) {
		s := newTestSession(t)

		out, err := s.Execute("echo JURU_EOC_not_a_real_marker", 0)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "JURU_EOC_"))
	})
}
