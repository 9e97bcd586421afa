package executor

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestRun(t *testing.T) {
	skipOnWindows(t)
	exec := New(0, 100*time.Millisecond)

	t.Run("SimpleCommand", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"echo", "hello"}, "", 0)
		require.NoError(t, err)
		assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		_, err := exec.Run(context.Background(), nil, "", 0)
		assert.ErrorIs(t, err, ErrEmptyCommand)
	})

	t.Run("MissingBinary", func(t *testing.T) {
		_, err := exec.Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"}, "", 0)
		var cmdErr *CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, "start", cmdErr.Stage)
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"sh", "-c", "echo first >&2; echo broken >&2; exit 3"}, "", 0)
		require.Error(t, err)
		assert.Equal(t, 3, res.ExitCode)

		var cmdErr *CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Equal(t, "execution", cmdErr.Stage)
		assert.Equal(t, "broken", cmdErr.Stderr)
	})

	t.Run("WorkingDirectory", func(t *testing.T) {
		dir := t.TempDir()
		res, err := exec.Run(context.Background(), []string{"pwd"}, dir, 0)
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, dir[strings.LastIndex(dir, "/")+1:])
	})

	t.Run("LargeOutput", func(t *testing.T) {
		exec := New(10, 0)
		res, err := exec.Run(context.Background(), []string{"echo", "123456789012345"}, "", 0)
		require.NoError(t, err)
		assert.True(t, res.Truncated)
		assert.LessOrEqual(t, len(res.Stdout), 10)
	})
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)
	exec := New(0, 100*time.Millisecond)

	t.Run("CompletesBeforeTimeout", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"echo", "hi"}, "", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "hi", strings.TrimSpace(res.Stdout))
	})

	t.Run("TimeoutKillsProcess", func(t *testing.T) {
		start := time.Now()
		res, err := exec.Run(context.Background(), []string{"sleep", "10"}, "", 100*time.Millisecond)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, -1, res.ExitCode)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("OutputCollectedOnTimeout", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"sh", "-c", "echo starting; sleep 10"}, "", 500*time.Millisecond)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.Equal(t, "starting", strings.TrimSpace(res.Stdout))
	})

	t.Run("ContextCancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, err := exec.Run(ctx, []string{"sleep", "10"}, "", 0)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestCollector(t *testing.T) {
	t.Run("UnderLimit", func(t *testing.T) {
		c := newCollector(10, 5)
		n, err := c.Write([]byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Equal(t, "abc", c.String())
		assert.False(t, c.Truncated())
	})

	t.Run("OverLimit", func(t *testing.T) {
		c := newCollector(5, 5)
		_, _ = c.Write([]byte("abcdef"))
		assert.Equal(t, "abcde", c.String())
		assert.True(t, c.Truncated())
	})

	t.Run("BinaryDetection", func(t *testing.T) {
		c := newCollector(10, 5)
		_, _ = c.Write([]byte{'a', 0, 'b'})
		assert.Equal(t, "[Binary Content]", c.String())
		assert.True(t, c.Truncated())
	})
}
