package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rifapix/settlement/pkg/integration"
)

type organizerTest struct {
	tc       *integration.TestCase
	provider Provider
	repo     Organizer
}

func newOrganizerTest() *organizerTest {
	tc := integration.NewTestCase()
	return &organizerTest{
		tc:       tc,
		provider: NewProvider(tc.DB),
		repo:     NewOrganizer(),
	}
}

func (ot *organizerTest) seed(organizerID string, provider string, secret string, enabled bool) {
	ot.tc.DB.MustExec(`
INSERT INTO organizer_integrations (organizer_id, provider, webhook_secret, enabled)
VALUES ($1, $2, $3, $4)
`, organizerID, provider, secret, enabled)
}

func TestOrganizer_GetIntegration(t *testing.T) {
	ot := newOrganizerTest()
	ot.tc.Truncate("organizer_integrations")

	ot.seed("org-1", "suitpay", "s3cret", true)
	ot.seed("org-1", "stripe", "whsec_123", false)

	ctx := ot.provider.Readonly(newContext())

	integ, err := ot.repo.GetIntegration(ctx, "org-1", "suitpay")
	assert.Equal(t, nil, err)
	assert.Equal(t, "org-1", integ.OrganizerID)
	assert.Equal(t, "suitpay", integ.Provider)
	assert.Equal(t, true, integ.WebhookSecret.Valid)
	assert.Equal(t, "s3cret", integ.WebhookSecret.String)
	assert.Equal(t, false, integ.APIKey.Valid)

	// disabled integrations read as missing
	_, err = ot.repo.GetIntegration(ctx, "org-1", "stripe")
	assert.Equal(t, true, errors.Is(err, ErrNotFound))

	_, err = ot.repo.GetIntegration(ctx, "org-2", "suitpay")
	assert.Equal(t, true, errors.Is(err, ErrNotFound))
}
