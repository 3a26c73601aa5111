package cli

import (
	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/api"
)

// NewFollowUpCmd creates the followup command
func NewFollowUpCmd(app *App) *cobra.Command {
	var (
		prompt string
		images []string
	)

	cmd := &cobra.Command{
		Use:   "followup <job-id>",
		Short: "Send an additional instruction to a running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imgs, err := loadImages(images)
			if err != nil {
				return err
			}

			client, err := app.client()
			if err != nil {
				return err
			}
			ack, err := client.SendFollowUp(cmd.Context(), args[0], api.FollowUpRequest{
				Prompt: api.Prompt{Text: prompt, Images: imgs},
			})
			if err != nil {
				return err
			}
			return app.render(cmd.OutOrStdout(), ack)
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Instruction text")
	cmd.Flags().StringArrayVar(&images, "image", nil, "Attach an image file (repeatable)")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}
