package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Display version information",
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			commit := app.versionInfo.Commit
			date := app.versionInfo.Date
			if commit == "" {
				commit = "unknown"
			}
			if date == "" {
				date = "unknown"
			}

			fmt.Fprintf(cmd.OutOrStdout(), "swarm version %s\n", app.version())
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
			fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)

			return nil
		},
	}

	return cmd
}
