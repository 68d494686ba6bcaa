//go:build linux

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ja7ad/procmon/pkg/config"
	"github.com/ja7ad/procmon/pkg/finder"
	"github.com/ja7ad/procmon/pkg/system/proc"
)

func main() {
	var cfgFile string

	root := &cobra.Command{
		Use:   "findpids --process_name NAME",
		Short: "Print the PIDs of processes with a given name",
		Long: `The findpids tool prints the PIDs of all processes whose name is exactly
NAME, colon-separated on one line. With --ancestor it prints a single PID:
the most remote ancestor of the first match that is owned by --user.

Every flag can also be set as FINDPIDS_<FLAG> in the environment or as a
key in the --config YAML file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.Load(cmd.Flags(), "FINDPIDS", cfgFile)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), proc.System{},
				v.GetString("process_name"), v.GetString("user"), v.GetBool("ancestor"))
		},
	}

	root.Flags().StringP("process_name", "n", "", "process name to search for (exact match)")
	root.Flags().Bool("ancestor", false, "report the most remote ancestor owned by --user")
	root.Flags().StringP("user", "u", "", "owner of the ancestor (default: current user)")
	root.Flags().StringVar(&cfgFile, "config", "", "YAML config file")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(w io.Writer, src finder.Source, name, user string, ancestor bool) error {
	if name == "" {
		return errors.New("process_name is required")
	}
	pids, err := finder.FindPIDs(src, name, user, ancestor)
	if err != nil {
		return err
	}
	ids := make([]string, len(pids))
	for i, pid := range pids {
		ids[i] = strconv.Itoa(pid)
	}
	_, err = fmt.Fprintln(w, strings.Join(ids, ":"))
	return err
}
