package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jvitoroc/gorules/engine"
)

func TestExecuteFlushesTraces(t *testing.T) {
	tcs := map[string]struct {
		args    []string
		wantErr error
	}{
		"successful command": {
			args: []string{"list"},
		},
		"failed command": {
			args:    []string{"eval", "missing_rule", "--set", "age=20"},
			wantErr: engine.ErrRuleNotFound,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()

			ra := NewRootArgs()
			flushed := 0
			ra.shutdownTracing = func(context.Context) error {
				flushed++
				return nil
			}

			cmd := newRootCmd(ra)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(append([]string{
				"--config", filepath.Join(dir, "gorules.yaml"),
				"--driver", "file",
				"--path", filepath.Join(dir, "rules"),
				"--log-level", "error",
			}, tc.args...))

			err := execute(context.Background(), cmd, ra)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, 1, flushed)
		})
	}
}

func TestFlushTracesWithCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	var flushErr error

	ra := NewRootArgs()
	ra.shutdownTracing = func(ctx context.Context) error {
		called = true
		flushErr = ctx.Err()
		return flushErr
	}

	ra.flushTraces(ctx)
	require.True(t, called)
	assert.NoError(t, flushErr)
}
