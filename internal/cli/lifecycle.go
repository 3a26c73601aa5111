package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/api"
)

// NewCancelCmd creates the cancel command
func NewCancelCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "cancel <job-id>",
		Aliases: []string{"stop"},
		Short:   "Stop a running job",
		Long:    "Stop a running job. The job moves to STOPPED and keeps its history.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAck(cmd, args[0], JobAPI.Cancel)
		},
	}
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <job-id>",
		Aliases: []string{"rm"},
		Short:   "Permanently delete a job",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runAck(cmd, args[0], JobAPI.Delete)
		},
	}
}

func (a *App) runAck(cmd *cobra.Command, id string, call func(JobAPI, context.Context, string) (*api.Ack, error)) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	ack, err := call(client, cmd.Context(), id)
	if err != nil {
		return err
	}
	a.logger.Debug("job acknowledged", "command", cmd.Name(), "id", ack.ID)
	return a.render(cmd.OutOrStdout(), ack)
}
