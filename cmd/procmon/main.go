//go:build linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ja7ad/procmon/pkg/config"
	"github.com/ja7ad/procmon/pkg/metric"
	"github.com/ja7ad/procmon/pkg/monitor"
	"github.com/ja7ad/procmon/pkg/system/proc"
	"github.com/ja7ad/procmon/pkg/system/util"
)

type opts struct {
	// target
	pid      int
	name     string
	user     string
	ancestor bool

	// sampling
	delta    float64
	affinity bool
	files    bool
	cgroup   bool

	// outputs
	outputPath string
	verbose    bool
}

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:   "procmon (--process_id PID | --process_name NAME)",
		Short: "Periodic process and process-tree monitor",
		Long: `The procmon tool samples a Linux process and all of its descendants at a
fixed interval and writes one comma-separated row per process and tick:
timestamp, host, PIDs, executable, command line, CPU and memory usage,
optionally CPU affinity, open files and cgroup.

Every flag can also be set as PROCMON_<FLAG> in the environment or as a
key in the --config YAML file.

Examples:
  procmon --process_id 4242 --delta 5
  procmon --process_name slurmstepd --ancestor --user alice --files --output-file run.csv`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.Load(cmd.Flags(), "PROCMON", cfgFile)
			if err != nil {
				return err
			}
			o := opts{
				pid:        v.GetInt("process_id"),
				name:       v.GetString("process_name"),
				user:       v.GetString("user"),
				ancestor:   v.GetBool("ancestor"),
				delta:      v.GetFloat64("delta"),
				affinity:   v.GetBool("affinity"),
				files:      v.GetBool("files"),
				cgroup:     v.GetBool("cgroup"),
				outputPath: v.GetString("output-file"),
				verbose:    v.GetBool("verbose"),
			}
			return run(cmd.Context(), o, cmd.OutOrStdout())
		},
	}

	root.Flags().IntP("process_id", "p", 0, "process ID to monitor")
	root.Flags().StringP("process_name", "n", "", "process name to monitor (exact match)")
	root.MarkFlagsMutuallyExclusive("process_id", "process_name")
	root.Flags().StringP("user", "u", "", "owner of the ancestor to monitor (default: current user)")
	root.Flags().Float64P("delta", "d", 60, "seconds between measurements")
	root.Flags().Bool("affinity", false, "monitor CPU affinity")
	root.Flags().Bool("files", false, "monitor open files")
	root.Flags().Bool("cgroup", false, "monitor cgroup membership")
	root.Flags().Bool("ancestor", false, "monitor the most remote ancestor owned by --user and all its descendants")
	root.Flags().StringP("output-file", "o", "", "write rows to this file instead of stdout")
	root.Flags().BoolP("verbose", "v", false, "diagnostic output on stderr")
	root.Flags().StringVar(&cfgFile, "config", "", "YAML config file")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func (o opts) validate() error {
	switch {
	case o.pid != 0 && o.name != "":
		return errors.New("process_id and process_name are mutually exclusive")
	case o.pid == 0 && o.name == "":
		return errors.New("one of process_id or process_name is required")
	case o.pid < 0:
		return fmt.Errorf("invalid process_id %d", o.pid)
	case o.delta <= 0:
		return fmt.Errorf("delta must be > 0, got %v", o.delta)
	}
	return nil
}

func (o opts) monitorConfig() monitor.Config {
	return monitor.Config{
		Target: monitor.Target{
			PID:      o.pid,
			Name:     o.name,
			User:     o.user,
			Ancestor: o.ancestor,
		},
		Interval: time.Duration(o.delta * float64(time.Second)),
		Metrics: metric.Options{
			Affinity: o.affinity,
			Files:    o.files,
			Cgroup:   o.cgroup,
		},
	}
}

func run(ctx context.Context, o opts, stdout io.Writer) error {
	setupLogger(o.verbose)

	if err := o.validate(); err != nil {
		return err
	}

	if o.verbose {
		sum, err := util.SystemSummary()
		if err != nil {
			slog.Debug("system summary incomplete", "err", err)
		}
		slog.Debug("host", "system", sum)
	}

	cfg := o.monitorConfig()
	// resolve before touching the output file, so a bad target keeps it intact
	pid, err := monitor.Resolve(proc.System{}, cfg.Target)
	if err != nil {
		return err
	}

	out := stdout
	if o.outputPath != "" {
		if err := os.MkdirAll(filepath.Dir(o.outputPath), 0o755); err != nil {
			return fmt.Errorf("output dir: %w", err)
		}
		f, err := os.Create(o.outputPath)
		if err != nil {
			return fmt.Errorf("output file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		out = f
	}

	// Ctrl-C handling
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return monitor.Start(ctx, pid, cfg, out)
}

func setupLogger(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
