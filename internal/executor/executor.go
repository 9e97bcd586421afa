// Package executor runs external fabrication tools (slicer, OpenSCAD, ffmpeg)
// with bounded output capture and a graceful timeout.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultMaxOutput caps captured stdout and stderr, each.
	DefaultMaxOutput = 1 << 20
	// DefaultGracePeriod is how long a timed-out command gets after SIGINT.
	DefaultGracePeriod = 2 * time.Second

	binarySampleSize = 8000
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Duration  time.Duration
}

// Runner is the consumer-side contract used by the camera and fabrication packages.
type Runner interface {
	Run(ctx context.Context, argv []string, dir string, timeout time.Duration) (*Result, error)
}

// OSExecutor runs real processes with os/exec.
type OSExecutor struct {
	maxOutput   int
	gracePeriod time.Duration
}

// New creates an OSExecutor. Non-positive values select the defaults.
func New(maxOutput int, gracePeriod time.Duration) *OSExecutor {
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &OSExecutor{maxOutput: maxOutput, gracePeriod: gracePeriod}
}

// Run executes argv in dir. A zero timeout means the command is bounded only by ctx.
// On timeout the process is interrupted, then killed after the grace period.
// A non-zero exit returns the Result together with a *CommandError.
func (e *OSExecutor) Run(ctx context.Context, argv []string, dir string, timeout time.Duration) (*Result, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	stdout := newCollector(e.maxOutput, binarySampleSize)
	stderr := newCollector(e.maxOutput, binarySampleSize)

	// CommandContext would kill immediately; interrupt first instead.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren holding the pipes open must not block Wait forever.
	cmd.WaitDelay = e.gracePeriod

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: argv[0], Cause: err, Stage: "start"}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	var execErr error
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-timer:
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(e.gracePeriod):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	res := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		Duration:  time.Since(start),
	}

	if execErr == nil {
		return res, nil
	}
	if errors.Is(execErr, ErrTimeout) || errors.Is(execErr, context.Canceled) || errors.Is(execErr, context.DeadlineExceeded) {
		res.ExitCode = -1
		return res, execErr
	}

	res.ExitCode = exitCode(execErr)
	return res, &CommandError{
		Cmd:      argv[0],
		Stage:    "execution",
		ExitCode: res.ExitCode,
		Stderr:   lastLine(res.Stderr),
		Cause:    execErr,
	}
}

func exitCode(err error) int {
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

// lastLine keeps error messages short; slicers print whole progress logs to stderr.
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
