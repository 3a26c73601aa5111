package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCmd creates the get command
func NewGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show the current state of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), job)
		},
	}
}

// NewConversationCmd creates the conversation command
func NewConversationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "conversation <job-id>",
		Aliases: []string{"conv"},
		Short:   "Show the message history of a job",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			conv, err := client.GetConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), conv)
		},
	}
}
