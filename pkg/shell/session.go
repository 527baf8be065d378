// Package shell maintains a long-running bash process so that working
// directory, exported variables, and other shell state carry across tool
// calls. Command completion is detected with a per-invocation sentinel line
// echoed on both output streams, because a raw pipe gives no other framing.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds a single command when the caller passes zero.
	DefaultTimeout = 30 * time.Second

	// queueDepth bounds each per-stream line channel. Readers block once a
	// command produces this much undrained output, which back-pressures the
	// child instead of growing memory without bound.
	queueDepth = 4096
)

// Session is a persistent bash session. It is not reentrant: one command at
// a time, enforced with an internal lock so a misbehaving caller degrades to
// serialized execution instead of interleaved output.
type Session struct {
	mu      sync.Mutex
	timeout time.Duration
	logger  zerolog.Logger

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout chan string
	stderr chan string
	exited chan struct{}
}

// Config holds session options.
type Config struct {
	// Timeout is the default per-command timeout. Zero means DefaultTimeout.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// New creates a session and starts the underlying bash process.
func New(cfg Config) (*Session, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s := &Session{
		timeout: timeout,
		logger:  cfg.Logger,
	}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

// start launches a fresh bash process, replacing any existing one. Fresh
// line channels are created so output from a previous process cannot leak
// into the new session.
func (s *Session) start() error {
	s.stop()

	cmd := exec.Command("/bin/bash", "--norc", "--noprofile")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start bash: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = make(chan string, queueDepth)
	s.stderr = make(chan string, queueDepth)
	s.exited = make(chan struct{})

	go readLines(stdout, s.stdout)
	go readLines(stderr, s.stderr)

	exited := s.exited
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	s.logger.Debug().Int("pid", cmd.Process.Pid).Msg("Bash session started")
	return nil
}

// readLines pumps one stream into its channel until EOF. Within a stream
// lines arrive in process order; no ordering holds between the two streams,
// which is why the sentinel is echoed on each independently.
func readLines(r io.Reader, lines chan<- string) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}

// alive reports whether the child process is still running.
func (s *Session) alive() bool {
	if s.cmd == nil {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// Execute runs command in the session's bash process and returns its
// combined stdout-then-stderr text. A dead or never-started process is
// restarted transparently first. Nonzero exit codes are not surfaced; only
// text is. When timeout elapses before the sentinel is seen, whatever
// partial output accumulated is returned with no error — best effort by
// design, logged as a warning.
func (s *Session) Execute(command string, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timeout <= 0 {
		timeout = s.timeout
	}

	if !s.alive() {
		s.logger.Warn().Msg("Bash process not running, restarting")
		if err := s.start(); err != nil {
			return "", err
		}
	}

	marker := "JURU_EOC_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	// The printf lines force a newline before each sentinel so the marker
	// sits on its own line even when the command's output omits a trailing
	// newline.
	envelope := fmt.Sprintf(
		"%s\nprintf '\\n'\necho %s\nprintf '\\n' >&2\necho %s >&2\n",
		command, marker, marker,
	)
	if _, err := io.WriteString(s.stdin, envelope); err != nil {
		return "", fmt.Errorf("failed to write command: %w", err)
	}

	deadline := time.Now().Add(timeout)
	stdout, sawOut := drain(s.stdout, marker, deadline)
	stderr, sawErr := drain(s.stderr, marker, deadline)

	if !sawOut || !sawErr {
		s.logger.Warn().
			Str("command", command).
			Dur("timeout", timeout).
			Msg("Command output truncated at timeout; it may still be running")
	}

	return strings.TrimSpace(stdout + "\n" + stderr), nil
}

// drain collects lines from one stream until its sentinel, the deadline, or
// channel close. It reports whether the sentinel was actually observed. The
// deadline is absolute so both streams share one budget regardless of drain
// order.
func drain(lines <-chan string, marker string, deadline time.Time) (string, bool) {
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	var collected []string
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return strings.Join(collected, "\n"), false
			}
			if strings.TrimSpace(line) == marker {
				// The envelope's printf leaves one blank line before the
				// sentinel when the command output ended with a newline.
				// That line is framing, not output.
				if n := len(collected); n > 0 && collected[n-1] == "" {
					collected = collected[:n-1]
				}
				return strings.Join(collected, "\n"), true
			}
			collected = append(collected, line)
		case <-timer.C:
			return strings.Join(collected, "\n"), false
		}
	}
}

// Restart kills the current process and starts a fresh one, discarding all
// shell state. It returns a confirmation string suitable for a tool result.
func (s *Session) Restart() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.start(); err != nil {
		return "", err
	}
	s.logger.Info().Msg("Bash session restarted")
	return "Bash session restarted.", nil
}

// Close terminates the bash process. It is idempotent and safe to call on a
// session whose process already died.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stop()
}

// stop kills the child and waits for it to be reaped. Callers hold s.mu.
func (s *Session) stop() {
	if s.cmd == nil {
		return
	}
	if s.alive() {
		_ = s.cmd.Process.Kill()
	}
	<-s.exited
	_ = s.stdin.Close()
	s.cmd = nil
}
