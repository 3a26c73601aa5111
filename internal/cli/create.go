package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RevCBH/swarm/internal/api"
)

// CreateOptions holds flags for the create command
type CreateOptions struct {
	Prompt        string
	PromptFile    string
	Images        []string
	Repository    string
	Ref           string
	Model         string
	Branch        string
	AutoPR        bool
	SkipReviewer  bool
	AsGithubApp   bool
	WebhookURL    string
	WebhookSecret string
	Wait          bool
}

// Validate checks flag combinations the request validator cannot see.
func (opts CreateOptions) Validate() error {
	if opts.Prompt != "" && opts.PromptFile != "" {
		return &UsageError{Message: "--prompt and --prompt-file are mutually exclusive"}
	}
	if opts.Prompt == "" && opts.PromptFile == "" {
		return &UsageError{Message: "one of --prompt or --prompt-file is required"}
	}
	return nil
}

// NewCreateCmd creates the create command
func NewCreateCmd(app *App) *cobra.Command {
	opts := CreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Launch a new agent job against a repository",
		Long: `Launch a new agent job. The created job is printed as JSON.

With --wait, swarm then polls the job until it reaches a terminal state,
using the configured poll interval and timeout.`,
		Example: `  swarm create --repo https://github.com/acme/api --prompt "Fix the flaky login test"
  swarm create --repo https://github.com/acme/api --prompt-file task.md --auto-pr --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			return app.RunCreate(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Prompt, "prompt", "p", "", "Instruction text for the agent")
	f.StringVar(&opts.PromptFile, "prompt-file", "", "Read the instruction text from a file (- for stdin)")
	f.StringArrayVar(&opts.Images, "image", nil, "Attach an image file (repeatable)")
	f.StringVarP(&opts.Repository, "repo", "r", "", "Repository URL the agent works against")
	f.StringVar(&opts.Ref, "ref", "", "Branch, tag or commit to start from")
	f.StringVarP(&opts.Model, "model", "m", "", "Model to run (default chosen by the service)")
	f.StringVar(&opts.Branch, "branch", "", "Name of the branch the agent pushes to")
	f.BoolVar(&opts.AutoPR, "auto-pr", false, "Open a pull request when the job finishes")
	f.BoolVar(&opts.SkipReviewer, "skip-reviewer-request", false, "Do not request a review on the pull request")
	f.BoolVar(&opts.AsGithubApp, "as-github-app", false, "Open the pull request as the GitHub app")
	f.StringVar(&opts.WebhookURL, "webhook-url", "", "URL notified on job status changes")
	f.StringVar(&opts.WebhookSecret, "webhook-secret", "", "Secret used to sign webhook deliveries (at least 32 characters)")
	f.BoolVarP(&opts.Wait, "wait", "w", false, "Wait for the job to reach a terminal state")

	return cmd
}

// RunCreate builds the request, launches the job and optionally waits on it.
func (a *App) RunCreate(ctx context.Context, cmd *cobra.Command, opts CreateOptions) error {
	req, err := buildCreateRequest(cmd, opts)
	if err != nil {
		return err
	}

	client, err := a.client()
	if err != nil {
		return err
	}

	job, err := client.CreateJob(ctx, req)
	if err != nil {
		return err
	}
	a.logger.Info("job created", "id", job.ID, "status", statusText(job))

	if !opts.Wait {
		return a.render(cmd.OutOrStdout(), job)
	}

	wopts, err := a.defaultWaitOptions()
	if err != nil {
		return err
	}
	return a.RunWait(ctx, cmd, client, []string{job.ID}, wopts)
}

func buildCreateRequest(cmd *cobra.Command, opts CreateOptions) (api.CreateJobRequest, error) {
	text := opts.Prompt
	if opts.PromptFile != "" {
		data, err := readPromptFile(cmd, opts.PromptFile)
		if err != nil {
			return api.CreateJobRequest{}, err
		}
		text = data
	}

	images, err := loadImages(opts.Images)
	if err != nil {
		return api.CreateJobRequest{}, err
	}

	req := api.CreateJobRequest{
		Prompt: api.Prompt{Text: text, Images: images},
		Source: api.Source{Repository: opts.Repository, Ref: opts.Ref},
		Model:  opts.Model,
	}
	if opts.AutoPR || opts.SkipReviewer || opts.AsGithubApp || opts.Branch != "" {
		req.Target = &api.TargetOptions{
			AutoCreatePr:          opts.AutoPR,
			SkipReviewerRequest:   opts.SkipReviewer,
			OpenAsCursorGithubApp: opts.AsGithubApp,
			BranchName:            opts.Branch,
		}
	}
	if opts.WebhookURL != "" || opts.WebhookSecret != "" {
		req.Webhook = &api.Webhook{URL: opts.WebhookURL, Secret: opts.WebhookSecret}
	}
	return req, nil
}

func readPromptFile(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = readAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read prompt file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
