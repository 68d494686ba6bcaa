//go:build linux

package metric

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/procmon/pkg/system/proc"
)

func startSleep(t *testing.T) *proc.Process {
	t.Helper()
	cmd := exec.Command("/bin/sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("skip: cannot start /bin/sleep: %v", err)
	}
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	p, err := proc.Open(cmd.Process.Pid)
	require.NoError(t, err)
	return p
}

// measure runs the single active metric called name.
func measure(t *testing.T, s *Set, p *proc.Process, name string) string {
	t.Helper()
	require.NoError(t, p.Refresh())
	for _, d := range s.defs {
		if d.Name == name {
			v, err := d.Measure(p)
			require.NoError(t, err, name)
			return v
		}
	}
	t.Fatalf("metric %s not active", name)
	return ""
}

func TestNew_Columns(t *testing.T) {
	base := []string{"time", "node", "pid", "ppid", "cmd", "cmdline", "cpu_percent",
		"cpu_user", "cpu_sys", "num_threads", "mem_percent", "mem"}

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"default", Options{}, base},
		{"affinity", Options{Affinity: true}, append(append([]string{}, base...), "affinity")},
		{"files", Options{Files: true}, append(append([]string{}, base...), "read_files", "write_files")},
		{"all", Options{Affinity: true, Files: true, Cgroup: true},
			append(append([]string{}, base...), "affinity", "read_files", "write_files", "cgroup")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Names())
			assert.Equal(t, len(tt.want), s.Len())
			assert.Equal(t, strings.Join(tt.want, ","), s.Header())
			assert.Len(t, strings.Split(s.Header(), ","), s.Len())
		})
	}
}

func TestRow_FieldCountMatchesHeader(t *testing.T) {
	s, err := New(Options{Affinity: true, Cgroup: true})
	require.NoError(t, err)
	p := startSleep(t)

	for i := 0; i < 2; i++ {
		row, err := s.Row(p)
		require.NoError(t, err)
		assert.Len(t, strings.Split(row, ","), s.Len(), "row %q", row)
		s.Sweep()
	}
}

func TestRow_Values(t *testing.T) {
	s, err := New(Options{Affinity: true})
	require.NoError(t, err)
	fixed := time.Unix(1700000000, 123456000)
	s.now = func() time.Time { return fixed }
	p := startSleep(t)

	row, err := s.Row(p)
	require.NoError(t, err)
	f := strings.Split(row, ",")
	col := func(name string) string { return f[indexOf(s.Names(), name)] }

	host, err := os.Hostname()
	require.NoError(t, err)

	assert.Equal(t, "1700000000.123456", col("time"))
	assert.Equal(t, host, col("node"))
	assert.Equal(t, strconv.Itoa(p.PID), col("pid"))
	assert.Equal(t, strconv.Itoa(os.Getpid()), col("ppid"))
	assert.True(t, filepath.IsAbs(col("cmd")), "cmd %q", col("cmd"))
	assert.Equal(t, `"/bin/sleep 30"`, col("cmdline"))
	assert.Equal(t, "0.00", col("cpu_percent"), "first observation")
	assert.Equal(t, "1", col("num_threads"))
	assert.NotEmpty(t, col("affinity"))

	mem, err := strconv.ParseUint(col("mem"), 10, 64)
	require.NoError(t, err)
	assert.Greater(t, mem, uint64(0))

	pct, err := strconv.ParseFloat(col("mem_percent"), 64)
	require.NoError(t, err)
	assert.True(t, pct >= 0 && pct < 100, "mem_percent %v", pct)
}

func TestRow_VanishedProcess(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	cmd := exec.Command("/bin/sleep", "30")
	if err := cmd.Start(); err != nil {
		t.Skipf("skip: cannot start /bin/sleep: %v", err)
	}
	p, err := proc.Open(cmd.Process.Pid)
	require.NoError(t, err)
	require.NoError(t, cmd.Process.Kill())
	_ = cmd.Wait()

	_, err = s.Row(p)
	assert.ErrorIs(t, err, proc.ErrNotFound)
}

func TestCmdline_Quoting(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)

	// read is a builtin, so the shell keeps its own argv while blocked
	cmd := exec.Command("/bin/sh", "-c", "read x", "it's", "")
	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	if err := cmd.Start(); err != nil {
		t.Skipf("skip: cannot start /bin/sh: %v", err)
	}
	t.Cleanup(func() {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	})
	p, err := proc.Open(cmd.Process.Pid)
	require.NoError(t, err)

	v := measure(t, s, p, "cmdline")
	assert.Equal(t, `"/bin/sh -c 'read x' 'it'"'"'s' ''"`, v)
}

func TestFiles_ReadAndWrite(t *testing.T) {
	s, err := New(Options{Files: true})
	require.NoError(t, err)

	dir := t.TempDir()
	rpath := filepath.Join(dir, "input.dat")
	require.NoError(t, os.WriteFile(rpath, []byte("data"), 0o644))
	rf, err := os.Open(rpath)
	require.NoError(t, err)
	defer rf.Close()

	wpath := filepath.Join(dir, "output.dat")
	wf, err := os.OpenFile(wpath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	defer wf.Close()
	const n = 4321
	_, err = wf.Write(make([]byte, n))
	require.NoError(t, err)

	p, err := proc.Open(os.Getpid())
	require.NoError(t, err)

	read := strings.Split(measure(t, s, p, "read_files"), ";")
	write := strings.Split(measure(t, s, p, "write_files"), ";")

	assert.Contains(t, read, rpath)
	assert.NotContains(t, read, wpath)
	assert.Contains(t, write, wpath+":"+strconv.Itoa(n))
	for _, w := range write {
		assert.False(t, strings.HasPrefix(w, rpath), "read-only file listed as written: %s", w)
	}
}

func TestFiles_UnavailableIsEmpty(t *testing.T) {
	s, err := New(Options{Files: true})
	require.NoError(t, err)
	p := startSleep(t)

	// sleep holds no regular files open
	assert.Equal(t, "", measure(t, s, p, "write_files"))
}

func TestCPUPercent_SecondSample(t *testing.T) {
	s, err := New(Options{})
	require.NoError(t, err)
	p, err := proc.Open(os.Getpid())
	require.NoError(t, err)

	assert.Equal(t, "0.00", measure(t, s, p, "cpu_percent"))
	time.Sleep(20 * time.Millisecond)
	v, err := strconv.ParseFloat(measure(t, s, p, "cpu_percent"), 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 0.0)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
