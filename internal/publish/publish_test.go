package publish_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sudokufaceoff/faceoff/internal/cmdutils"
	"github.com/sudokufaceoff/faceoff/internal/publish"
)

func TestSteps(t *testing.T) {
	t.Parallel()

	self := []string{"/usr/bin/faceoff", "--config", "/etc/faceoff.yaml", "-v"}

	tests := map[string]struct {
		apple  []string
		google []string

		want []publish.Step
	}{
		"Default steps run self": {
			want: []publish.Step{
				{Store: "apple", Command: []string{"/usr/bin/faceoff", "--config", "/etc/faceoff.yaml", "-v", "push", "apple", "fr"}},
				{Store: "google", Command: []string{"/usr/bin/faceoff", "--config", "/etc/faceoff.yaml", "-v", "push", "google", "fr"}},
			},
		},
		"Overrides get locale appended": {
			apple:  []string{"node", "pushToApple.js"},
			google: []string{"./push-google"},
			want: []publish.Step{
				{Store: "apple", Command: []string{"node", "pushToApple.js", "fr"}},
				{Store: "google", Command: []string{"./push-google", "fr"}},
			},
		},
		"Overrides are independent": {
			google: []string{"./push-google"},
			want: []publish.Step{
				{Store: "apple", Command: []string{"/usr/bin/faceoff", "--config", "/etc/faceoff.yaml", "-v", "push", "apple", "fr"}},
				{Store: "google", Command: []string{"./push-google", "fr"}},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := publish.Steps("fr", self, tc.apple, tc.google)
			assert.Equal(t, tc.want, got)
			assert.Len(t, self, 4, "Steps should not modify self")
		})
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := publish.New([]publish.Step{{Store: "apple"}})
	require.ErrorIs(t, err, publish.ErrEmptyCommand)

	p, err := publish.New(nil)
	require.NoError(t, err, "New should accept no steps")
	assert.Len(t, p.RunID(), 36, "Generated run ID should be a UUID")

	p2, err := publish.New(nil)
	require.NoError(t, err, "New should accept no steps")
	assert.NotEqual(t, p.RunID(), p2.RunID(), "Every run should get its own ID")
}

// fakeRun records the commands it is asked to run and fails the ones listed in errs.
type fakeRun struct {
	errs map[string]error

	mu  sync.Mutex
	ran []string
}

func (f *fakeRun) run(ctx context.Context, cmd string, args []string, opts ...cmdutils.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ran = append(f.ran, cmd)
	return f.errs[cmd]
}

func TestRun(t *testing.T) {
	t.Parallel()

	steps := []publish.Step{
		{Store: "apple", Command: []string{"apple-cmd", "fr"}},
		{Store: "google", Command: []string{"google-cmd", "fr"}},
	}

	tests := map[string]struct {
		errs map[string]error

		wantRan []string
		wantErr bool
	}{
		"Runs Apple then Google": {wantRan: []string{"apple-cmd", "google-cmd"}},

		"Error on Apple start skips Google": {errs: map[string]error{"apple-cmd": errors.New("not found")}, wantRan: []string{"apple-cmd"}, wantErr: true},
		"Error on Google start":             {errs: map[string]error{"google-cmd": errors.New("not found")}, wantRan: []string{"apple-cmd", "google-cmd"}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			f := &fakeRun{errs: tc.errs}
			p, err := publish.New(steps, publish.WithRun(f.run), publish.WithRunID("run-1"))
			require.NoError(t, err, "Setup: could not create publisher")

			err = p.Run(context.Background())
			assert.Equal(t, tc.wantRan, f.ran, "Unexpected steps run")
			if tc.wantErr {
				require.Error(t, err, "Run should return an error")
				var exitErr *publish.ExitError
				assert.False(t, errors.As(err, &exitErr), "A step which did not start has no exit code")
				return
			}
			require.NoError(t, err, "Run should not return an error")
		})
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &fakeRun{}
	p, err := publish.New([]publish.Step{{Store: "apple", Command: []string{"apple-cmd"}}}, publish.WithRun(f.run))
	require.NoError(t, err, "Setup: could not create publisher")

	err = p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.ran, "No step should start once cancelled")
}

// TestHelperProcess is not a real test. It is the child process spawned by TestRunChildProcesses.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("FACEOFF_HELPER_PROCESS") != "1" {
		t.Skip("Helper process only")
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	fmt.Printf("%s run=%s\n", strings.Join(args, " "), os.Getenv("FACEOFF_RUN_ID"))
	if len(args) > 0 && args[0] == "fail" {
		fmt.Fprintln(os.Stderr, "push failed")
		os.Exit(4)
	}
	os.Exit(0)
}

func TestRunChildProcesses(t *testing.T) {
	t.Setenv("FACEOFF_HELPER_PROCESS", "1")

	self := []string{os.Args[0], "-test.run=^TestHelperProcess$", "--"}

	tests := map[string]struct {
		apple  []string
		google []string

		wantStdout string
		wantStderr string
		wantExit   *publish.ExitError
	}{
		"Streams both steps output": {
			apple:      append(append([]string{}, self...), "ok", "apple"),
			google:     append(append([]string{}, self...), "ok", "google"),
			wantStdout: "ok apple fr run=run-42\nok google fr run=run-42\n",
		},
		"Error on Apple exit stops run": {
			apple:      append(append([]string{}, self...), "fail", "apple"),
			google:     append(append([]string{}, self...), "ok", "google"),
			wantStdout: "fail apple fr run=run-42\n",
			wantStderr: "push failed\n",
			wantExit:   &publish.ExitError{Store: "apple", Code: 4},
		},
		"Error on Google exit": {
			apple:      append(append([]string{}, self...), "ok", "apple"),
			google:     append(append([]string{}, self...), "fail", "google"),
			wantStdout: "ok apple fr run=run-42\nfail google fr run=run-42\n",
			wantStderr: "push failed\n",
			wantExit:   &publish.ExitError{Store: "google", Code: 4},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			p, err := publish.New(publish.Steps("fr", nil, tc.apple, tc.google),
				publish.WithRunID("run-42"), publish.WithOutput(&stdout, &stderr))
			require.NoError(t, err, "Setup: could not create publisher")

			err = p.Run(context.Background())
			assert.Equal(t, tc.wantStdout, stdout.String(), "Unexpected streamed stdout")
			assert.Equal(t, tc.wantStderr, stderr.String(), "Unexpected streamed stderr")

			if tc.wantExit != nil {
				var exitErr *publish.ExitError
				require.ErrorAs(t, err, &exitErr, "Run should return an exit error")
				assert.Equal(t, tc.wantExit, exitErr)
				return
			}
			require.NoError(t, err, "Run should not return an error")
		})
	}
}
