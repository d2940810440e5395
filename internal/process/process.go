// Package process runs external converters under a deadline and reaps the
// whole process tree when the deadline passes.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ErrTimeout is returned when a command outlives its deadline.
var ErrTimeout = errors.New("process timed out")

// Result captures a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Run starts cmd in its own process group and waits for it.
// When timeout elapses or ctx is done, the group is killed and ErrTimeout
// (or the context error) is returned.
func Run(ctx context.Context, cmd *exec.Cmd, timeout time.Duration) (Result, error) {
	var stdout, stderr bytes.Buffer
	if cmd.Stdout == nil {
		cmd.Stdout = &stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = &stderr
	}
	Isolate(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("starting %s: %w", cmd.Path, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	res := func() Result {
		return Result{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(start)}
	}

	select {
	case err := <-done:
		if err != nil {
			return res(), fmt.Errorf("%s: %w", cmd.Path, err)
		}
		return res(), nil
	case <-timer.C:
		KillGroup(cmd.Process.Pid)
		<-done
		return res(), fmt.Errorf("%w: %s after %s", ErrTimeout, cmd.Path, timeout)
	case <-ctx.Done():
		KillGroup(cmd.Process.Pid)
		<-done
		return res(), ctx.Err()
	}
}
