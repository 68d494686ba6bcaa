//go:build linux

package main

import (
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/procmon/pkg/system/proc"
)

func TestRun_ColonJoined(t *testing.T) {
	var cmds []*exec.Cmd
	for i := 0; i < 2; i++ {
		cmd := exec.Command("/bin/sleep", "30")
		if err := cmd.Start(); err != nil {
			t.Skipf("skip: cannot start /bin/sleep: %v", err)
		}
		cmds = append(cmds, cmd)
	}
	t.Cleanup(func() {
		for _, c := range cmds {
			_ = c.Process.Kill()
			_ = c.Wait()
		}
	})
	name, err := proc.System{}.Name(cmds[0].Process.Pid)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, run(&buf, proc.System{}, name, "", false))

	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\n"))
	pids := strings.Split(strings.TrimSpace(out), ":")
	for _, c := range cmds {
		assert.Contains(t, pids, strconv.Itoa(c.Process.Pid))
	}
}

func TestRun_NoMatchPrintsEmptyLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(&buf, proc.System{}, "no-such-process-"+strconv.Itoa(os.Getpid()), "", true))
	assert.Equal(t, "\n", buf.String())
}

func TestRun_NameRequired(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, run(&buf, proc.System{}, "", "", false))
	assert.Zero(t, buf.Len())
}
