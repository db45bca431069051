package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rifapix/settlement/model"
)

// Organizer ...
type Organizer interface {
	GetIntegration(ctx context.Context, organizerID string, provider string) (model.OrganizerIntegration, error)
}

type organizerImpl struct {
}

// NewOrganizer ...
func NewOrganizer() Organizer {
	return &organizerImpl{}
}

// GetIntegration returns the organizer's credentials for one provider,
// ErrNotFound when the integration is missing or disabled
func (o *organizerImpl) GetIntegration(
	ctx context.Context, organizerID string, provider string,
) (model.OrganizerIntegration, error) {
	query := `
SELECT organizer_id, provider, api_key, client_secret, webhook_secret, enabled, created_at, updated_at
FROM organizer_integrations
WHERE organizer_id = $1 AND provider = $2 AND enabled
`
	var result model.OrganizerIntegration
	err := GetReadonly(ctx).GetContext(ctx, &result, query, organizerID, provider)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OrganizerIntegration{}, fmt.Errorf(
			"%w: integration %s for organizer %s", ErrNotFound, provider, organizerID)
	}
	return result, err
}
