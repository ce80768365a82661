package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"procurement/domain"
)

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, Badge{Label: "Pending verification", Tone: ToneWarning},
		StatusBadge(domain.StatusPending))
	assert.Equal(t, Badge{Label: "Verified", Tone: ToneSuccess},
		StatusBadge(domain.StatusVerified))
	assert.Equal(t, Badge{Label: "Rejected", Tone: ToneDanger},
		StatusBadge(domain.StatusRejected))
}

func TestStatusBadgeUnknownStatusFallsThrough(t *testing.T) {
	badge := StatusBadge("weird_state")
	assert.Equal(t, "weird_state", badge.Label)
	assert.Equal(t, ToneNeutral, badge.Tone)
}

func TestRequestBadge(t *testing.T) {
	assert.Equal(t, ToneWarning, RequestBadge(domain.RequestOpen).Tone)
	assert.Equal(t, ToneInfo, RequestBadge(domain.RequestConverted).Tone)
}

func TestPayoutBadge(t *testing.T) {
	assert.Equal(t, ToneSuccess, PayoutBadge(domain.PayoutSent).Tone)
	assert.Equal(t, ToneDanger, PayoutBadge(domain.PayoutFailed).Tone)
}
