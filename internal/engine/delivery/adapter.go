package delivery

import (
	"context"

	"hookfan/internal/platform/models"
)

// Adapter pushes one resolved record into one destination kind. Exactly one
// external write per invocation; retrying is the Dispatcher's job, never the
// adapter's.
type Adapter interface {
	Write(ctx context.Context, dest *models.Destination, record map[string]interface{}) error
}

// CredentialStore supplies provider credentials for a webhook's owner at
// call time. Implemented by repositories.ProviderTokenRepository.
type CredentialStore interface {
	TokenForWebhook(webhookID string) (*models.ProviderToken, error)
}
