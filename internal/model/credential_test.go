package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
)

func strPtr(s string) *string { return &s }

func TestCredentialParsesConstraints(t *testing.T) {
	until := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	u := RedeemableUnit{
		ID:              1,
		Kind:            UnitKindMulti,
		Status:          lifecycle.UnitPurchased,
		TotalUses:       10,
		UsesRemaining:   4,
		ValidUntil:      &until,
		AllowedWeekdays: "Mon, Wed,Fri",
		WindowStart:     strPtr("11:30"),
		WindowEnd:       strPtr("14:00"),
	}

	cred, err := u.Credential()
	require.NoError(t, err)

	assert.False(t, cred.SingleUse)
	assert.Equal(t, 10, cred.TotalUses)
	assert.Equal(t, 4, cred.UsesRemaining)
	assert.Equal(t, &until, cred.ValidUntil)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, cred.Weekdays)
	require.NotNil(t, cred.Window)
	assert.Equal(t, 11*60+30, cred.Window.StartMinute)
	assert.Equal(t, 14*60, cred.Window.EndMinute)
}

func TestCredentialEmptyConstraintsMeanUnrestricted(t *testing.T) {
	u := RedeemableUnit{ID: 1, Kind: UnitKindSingle, Status: lifecycle.UnitPurchased, TotalUses: 1, UsesRemaining: 1}

	cred, err := u.Credential()
	require.NoError(t, err)

	assert.True(t, cred.SingleUse)
	assert.Nil(t, cred.ValidUntil)
	assert.Empty(t, cred.Weekdays)
	assert.Nil(t, cred.Window)
}

func TestCredentialRejectsMalformedWeekday(t *testing.T) {
	u := RedeemableUnit{ID: 1, Kind: UnitKindMulti, AllowedWeekdays: "Mon,Funday"}

	_, err := u.Credential()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Funday")
}

func TestCredentialRejectsMalformedWindow(t *testing.T) {
	u := RedeemableUnit{ID: 1, Kind: UnitKindMulti, WindowStart: strPtr("25:99"), WindowEnd: strPtr("14:00")}

	_, err := u.Credential()
	require.Error(t, err)
}

func TestCredentialIgnoresHalfOpenWindow(t *testing.T) {
	// A window needs both bounds; a lone start is treated as no window.
	u := RedeemableUnit{ID: 1, Kind: UnitKindMulti, WindowStart: strPtr("11:00")}

	cred, err := u.Credential()
	require.NoError(t, err)
	assert.Nil(t, cred.Window)
}
