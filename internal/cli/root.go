// Package cli implements clubctl, the operator command line for the club
// content store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/clubhouse/internal/adapters/backend"
	"github.com/okian/clubhouse/internal/config"
	"github.com/okian/clubhouse/pkg/logger"
)

type state struct {
	cfgFile string
	cfg     *config.Config
	backend *backend.Backend
}

// NewRootCommand builds the clubctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	st := &state{}
	root := &cobra.Command{
		Use:           "clubctl",
		Short:         "Inspect and manage the club content store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.open(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return st.close()
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&st.cfgFile, "config", "", "YAML config file (overrides CLUB_CONFIG)")

	root.AddCommand(
		newFeedCommand(st),
		newBannerCommand(st),
		newSeedCommand(st),
		newSubscribeCommand(st),
		newSubmissionsCommand(st),
	)
	return root
}

// Execute runs clubctl with the process arguments.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand(os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "clubctl:", err)
		return 1
	}
	return 0
}

func (st *state) open(ctx context.Context) error {
	if st.cfgFile != "" {
		if err := os.Setenv("CLUB_CONFIG", st.cfgFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	// operator output goes to stdout; logs stay on stderr
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	st.cfg, st.backend = cfg, b
	return nil
}

func (st *state) close() error {
	if st.backend == nil {
		return nil
	}
	err := st.backend.Close()
	st.backend = nil
	return err
}
