package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanDecide(t *testing.T) {
	order := PurchaseOrder{Status: StatusPending}
	assert.True(t, order.CanDecide())

	for _, status := range []string{StatusVerified, StatusRejected, StatusFulfilled, StatusCancelled} {
		order.Status = status
		assert.False(t, order.CanDecide(), status)
	}
}

func TestEventTrailRoundTrip(t *testing.T) {
	trail := EventTrail{
		{Action: "verified", Actor: "ops@acme", Note: "invoice matches", At: time.Now().UTC().Truncate(time.Second)},
	}

	value, err := trail.Value()
	require.NoError(t, err)

	var decoded EventTrail
	require.NoError(t, decoded.Scan(value))

	require.Len(t, decoded, 1)
	assert.Equal(t, "verified", decoded[0].Action)
	assert.Equal(t, "ops@acme", decoded[0].Actor)
}

func TestEventTrailScanNil(t *testing.T) {
	var trail EventTrail
	require.NoError(t, trail.Scan(nil))
	assert.Empty(t, trail)
}

func TestEventTrailScanRejectsOddTypes(t *testing.T) {
	var trail EventTrail
	assert.ErrorIs(t, trail.Scan(42), ErrConvertJSONB)
}

func TestEventTrailNilValue(t *testing.T) {
	var trail EventTrail
	value, err := trail.Value()
	require.NoError(t, err)
	assert.Equal(t, `[]`, value)
}
