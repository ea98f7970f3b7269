package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultMaxOutput bounds the captured stdout and stderr of the client.
const DefaultMaxOutput = 64 * 1024

var (
	ErrClientMissing = errors.New("client executable not found")
	ErrTimeout       = errors.New("client did not finish in time")
)

// Launcher runs the external client with no arguments.
type Launcher struct {
	Path      string
	Dir       string
	MaxOutput int
}

// Run describes one client execution.
type Run struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	// Killed is set when the client was terminated by the launcher.
	Killed bool
}

// Check verifies the client executable exists.
func (l *Launcher) Check() error {
	st, err := os.Stat(l.Path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrClientMissing, l.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat client: %w", err)
	}
	if st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrClientMissing, l.Path)
	}
	return nil
}

// Start launches the client. The returned wait function blocks until the
// client exits, timeout elapses or ctx is done; in the last two cases the
// client is killed and reaped before returning ErrTimeout or ctx.Err().
func (l *Launcher) Start(ctx context.Context, timeout time.Duration) (wait func() (*Run, error), err error) {
	if err := l.Check(); err != nil {
		return nil, err
	}

	maxOut := l.MaxOutput
	if maxOut <= 0 {
		maxOut = DefaultMaxOutput
	}
	stdout := &limitedBuffer{max: maxOut}
	stderr := &limitedBuffer{max: maxOut}

	cmd := exec.Command(l.Path)
	cmd.Dir = l.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// children that inherit the output pipes must not block Wait forever
	cmd.WaitDelay = time.Second

	startedAt := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start client: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	wait = func() (*Run, error) {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		var waitErr, res error
		killed := false
		select {
		case waitErr = <-done:
		case <-timer.C:
			_ = cmd.Process.Kill()
			waitErr = <-done
			killed = true
			res = ErrTimeout
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			waitErr = <-done
			killed = true
			res = ctx.Err()
		}

		run := &Run{
			ExitCode: exitCode(cmd, waitErr),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Elapsed:  time.Since(startedAt),
			Killed:   killed,
		}
		if res == nil && waitErr != nil {
			var exitErr *exec.ExitError
			if !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) {
				res = fmt.Errorf("failed to wait for client: %w", waitErr)
			}
		}
		return run, res
	}
	return wait, nil
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}

// limitedBuffer keeps the first max bytes written and drops the rest.
type limitedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
			b.truncated = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n[output truncated]"
	}
	return b.buf.String()
}
