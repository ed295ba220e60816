package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/clubhouse/internal/domain/feed"
	"github.com/okian/clubhouse/internal/domain/temporal"
)

func newFeedCommand(st *state) *cobra.Command {
	var bucket, category, policy string
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the events listing for one bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := feed.ParseBucket(bucket)
			if err != nil {
				return err
			}
			p, ok := temporal.ParsePolicy(policy)
			if !ok {
				return fmt.Errorf("unknown policy %q", policy)
			}
			events, err := st.backend.Repository.Events.GetAll(cmd.Context())
			if err != nil {
				return err
			}
			f := feed.Build(events, time.Now(), p)
			items := feed.Filter(f.Bucket(b), category)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s): %d of %d events, %d upcoming, %d past\n",
				b, f.Policy, len(items), f.Len(), f.UpcomingCount, f.PastCount)
			return printItems(out, items)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", string(feed.BucketUpcoming), "Upcoming or Previous")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&policy, "policy", "day-floor", "day-floor or instant")
	return cmd
}

func printItems(out io.Writer, items []feed.DisplayItem) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCATEGORY\tTITLE\tLOCATION\tID")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			it.DateLabel, it.Event.Category, it.Event.Title, it.Event.Location, it.Event.ID)
	}
	return tw.Flush()
}
