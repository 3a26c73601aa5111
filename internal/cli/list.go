package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/api"
)

// ListOptions holds flags for the list command
type ListOptions struct {
	Limit  int
	Cursor string
}

// NewListCmd creates the list command
func NewListCmd(app *App) *cobra.Command {
	opts := ListOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent jobs",
		Long: `List jobs newest first. When more jobs are available the page carries
a nextCursor; pass it back with --cursor to fetch the next page.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunList(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", api.DefaultListLimit, "Jobs per page (1-100)")
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "Cursor returned by a previous page")

	return cmd
}

// RunList fetches one page of jobs.
func (a *App) RunList(ctx context.Context, cmd *cobra.Command, opts ListOptions) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	page, err := client.ListJobs(ctx, api.ListOptions{Limit: opts.Limit, Cursor: opts.Cursor})
	if err != nil {
		return err
	}
	return a.render(cmd.OutOrStdout(), page)
}
