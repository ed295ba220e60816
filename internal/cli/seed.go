package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/clubhouse/internal/seed"
)

func newSeedCommand(st *state) *cobra.Command {
	cfg := seed.Config{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with generated events, posts and team members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Now = time.Now()
			stats, err := seed.Run(cmd.Context(), st.backend.Repository, &cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d events (%d upcoming, %d past), %d posts, %d team members in %s\n",
				stats.EventsWritten, stats.Upcoming, stats.Past, stats.BlogsWritten, stats.TeamWritten,
				stats.Duration.Round(time.Millisecond))
			if stats.Failed > 0 {
				return fmt.Errorf("%d items failed to write", stats.Failed)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Events, "events", 24, "events to generate")
	f.IntVar(&cfg.Blogs, "blogs", 6, "blog posts to generate")
	f.IntVar(&cfg.Team, "team", 6, "team members to generate")
	f.IntVar(&cfg.Workers, "workers", 4, "concurrent writers")
	f.DurationVar(&cfg.Span, "span", 60*24*time.Hour, "events start within now +/- span")
	f.StringVar(&cfg.OutputFile, "output", "", "write what was stored to this JSON file")
	return cmd
}
