package api

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinWebhookSecretLength is the shortest webhook secret the remote accepts.
	MinWebhookSecretLength = 32

	// MaxListLimit is the largest page size ListJobs allows.
	MaxListLimit = 100

	// DefaultListLimit is used when ListOptions.Limit is zero.
	DefaultListLimit = 20
)

// Validate checks the request locally. It returns nil or the joined
// ValidationErrors for every problem found.
func (r *CreateJobRequest) Validate() error {
	var errs []error

	if strings.TrimSpace(r.Prompt.Text) == "" {
		errs = append(errs, &ValidationError{Field: "prompt.text", Message: "must not be empty"})
	}
	if strings.TrimSpace(r.Source.Repository) == "" {
		errs = append(errs, &ValidationError{Field: "source.repository", Message: "must not be empty"})
	}
	errs = append(errs, validateImages("prompt.images", r.Prompt.Images)...)

	if r.Webhook != nil {
		if r.Webhook.URL == "" {
			errs = append(errs, &ValidationError{Field: "webhook.url", Message: "must be set when a webhook is configured"})
		}
		if n := utf8.RuneCountInString(r.Webhook.Secret); r.Webhook.Secret != "" && n < MinWebhookSecretLength {
			errs = append(errs, &ValidationError{
				Field:   "webhook.secret",
				Message: fmt.Sprintf("must be at least %d characters (got %d)", MinWebhookSecretLength, n),
				Err:     ErrWebhookSecretTooShort,
			})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks the follow-up locally.
func (r *FollowUpRequest) Validate() error {
	var errs []error
	if strings.TrimSpace(r.Prompt.Text) == "" {
		errs = append(errs, &ValidationError{Field: "prompt.text", Message: "must not be empty"})
	}
	errs = append(errs, validateImages("prompt.images", r.Prompt.Images)...)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks paging parameters.
func (o ListOptions) Validate() error {
	if o.Limit < 0 || o.Limit > MaxListLimit {
		return &ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("must be between 1 and %d (got %d)", MaxListLimit, o.Limit),
		}
	}
	return nil
}

func validateImages(field string, images []Image) []error {
	var errs []error
	for i, img := range images {
		if img.Data == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("%s[%d].data", field, i),
				Message: "must not be empty",
			})
		}
	}
	return errs
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	return nil
}
