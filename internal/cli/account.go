package cli

import (
	"github.com/spf13/cobra"
)

// NewMeCmd creates the me command
func NewMeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the account behind the configured API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			info, err := client.AccountInfo(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), info)
		},
	}
}

// NewModelsCmd creates the models command
func NewModelsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models available to agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), models)
		},
	}
}

// NewReposCmd creates the repos command
func NewReposCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List repositories the account can launch agents against",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.client()
			if err != nil {
				return err
			}
			repos, err := client.ListRepositories(cmd.Context())
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), repos)
		},
	}
}
