package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/clubhouse/internal/adapters/repository"
	service "github.com/okian/clubhouse/internal/app"
	"github.com/okian/clubhouse/internal/domain/model"
)

func newSubscribeCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <email>",
		Short: "Subscribe an address to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := st.backend.Repository
			gw := service.NewGateway(repo.Contact, repo.Applications, repo.Newsletter)
			id, err := gw.Submit(cmd.Context(), model.KindNewsletter, map[string]string{"email": args[0]})
			if errors.Is(err, service.ErrAlreadySubscribed) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already subscribed\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscribed %s (%s)\n", args[0], id)
			return nil
		},
	}
}

func newSubmissionsCommand(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Review contact messages and team applications",
	}

	var status, role string
	list := &cobra.Command{
		Use:       "list <contact|application>",
		Short:     "List submissions, newest first",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.KindContact), string(model.KindApplication)},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := submissionStore(st.backend.Repository, args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			var subs []model.Submission
			switch {
			case role != "":
				apps := st.backend.Repository.Applications
				if store != &apps.Submissions {
					return errors.New("--role only applies to applications")
				}
				subs, err = apps.GetByRole(ctx, role)
			case status != "":
				subs, err = store.GetByStatus(ctx, status)
			default:
				subs, err = store.GetAll(ctx)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tNAME\tEMAIL")
			for _, s := range subs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.ID, s.CreatedAt.Format(time.DateTime), s.Status, s.Fields["name"], s.Fields["email"])
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", "", "only this status")
	list.Flags().StringVar(&role, "role", "", "only applications for this role")

	setStatus := &cobra.Command{
		Use:   "status <contact|application> <id> <status>",
		Short: "Set the review status of a submission",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := submissionStore(st.backend.Repository, args[0])
			if err != nil {
				return err
			}
			s, err := store.UpdateStatus(cmd.Context(), args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s\n", s.Kind, s.ID, s.Status)
			return nil
		},
	}

	cmd.AddCommand(list, setStatus)
	return cmd
}

func submissionStore(repo *repository.Repository, kind string) (*repository.Submissions, error) {
	switch model.SubmissionKind(kind) {
	case model.KindContact:
		return repo.Contact, nil
	case model.KindApplication:
		return &repo.Applications.Submissions, nil
	}
	return nil, fmt.Errorf("unknown submission kind %q", kind)
}
