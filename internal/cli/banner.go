package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/slideshow"
	"github.com/okian/clubhouse/internal/domain/temporal"
)

func newBannerCommand(st *state) *cobra.Command {
	var slides int
	var tick time.Duration
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Play the home page banner in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			events, err := st.backend.Repository.Events.GetAll(ctx)
			if err != nil {
				return err
			}
			f := feed.Build(events, time.Now(), temporal.InstantPolicy)
			if f.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no events")
				return nil
			}
			if tick <= 0 {
				tick = st.cfg.Feed.TickInterval
			}
			return playBanner(ctx, cmd, f, slides, slideshow.WithTickInterval(tick))
		},
	}
	cmd.Flags().IntVar(&slides, "slides", 0, "stop after this many slides (0 plays until interrupted)")
	cmd.Flags().DurationVar(&tick, "tick", 0, "time per slide (default from feed.tick_interval)")
	return cmd
}

// playBanner prints each slide as the controller advances.
func playBanner(ctx context.Context, cmd *cobra.Command, f feed.Feed, slides int, opts ...slideshow.Option) error {
	shown := make(chan int, 1)
	opts = append(opts, slideshow.WithOnChange(func(s slideshow.Snapshot) {
		if s.Index < 0 {
			return
		}
		select {
		case shown <- s.Index:
		default:
		}
	}))
	ctl := slideshow.New(0, opts...)
	defer ctl.Close()
	ctl.SetLength(f.Len())

	out := cmd.OutOrStdout()
	for count := 0; slides <= 0 || count < slides; count++ {
		select {
		case <-ctx.Done():
			return nil
		case i := <-shown:
			it := f.Items[i]
			fmt.Fprintf(out, "[%d/%d] %-8s %s | %s | %s\n",
				i+1, f.Len(), it.Status, it.Event.Title, it.DateLabel, it.Event.Category)
		}
	}
	return nil
}
