package cli

import (
	"context"

	"github.com/RevCBH/swarm/internal/api"
	"github.com/RevCBH/swarm/internal/config"
	"github.com/RevCBH/swarm/internal/notify"
)

// JobAPI is the remote job API as used by the commands. *api.Client
// satisfies it.
type JobAPI interface {
	CreateJob(ctx context.Context, req api.CreateJobRequest) (*api.Job, error)
	ListJobs(ctx context.Context, opts api.ListOptions) (*api.JobPage, error)
	GetJob(ctx context.Context, id string) (*api.Job, error)
	GetConversation(ctx context.Context, id string) (*api.Conversation, error)
	SendFollowUp(ctx context.Context, id string, req api.FollowUpRequest) (*api.Ack, error)
	Cancel(ctx context.Context, id string) (*api.Ack, error)
	Delete(ctx context.Context, id string) (*api.Ack, error)
	AccountInfo(ctx context.Context) (*api.AccountInfo, error)
	ListModels(ctx context.Context) (*api.ModelList, error)
	ListRepositories(ctx context.Context) (*api.RepositoryList, error)
}

func (a *App) buildClient(cfg *config.Config) (JobAPI, error) {
	c, err := api.NewClient(cfg.API.Key,
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithLogger(a.logger),
		api.WithUserAgent("swarm/"+a.version()),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *App) client() (JobAPI, error) {
	return a.newClient(a.cfg)
}

func (a *App) version() string {
	if a.versionInfo.Version == "" {
		return "dev"
	}
	return a.versionInfo.Version
}

func (a *App) buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	return notify.FromConfig(notify.Config{
		Backends:     cfg.Notify.Backends,
		SlackWebhook: cfg.Notify.SlackWebhook,
		WebhookURL:   cfg.Notify.WebhookURL,
		AMQP: notify.AMQPConfig{
			URL:        cfg.Notify.AMQP.URL,
			Exchange:   cfg.Notify.AMQP.Exchange,
			RoutingKey: cfg.Notify.AMQP.RoutingKey,
		},
		Logger: a.logger,
	})
}
