package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		// desde PENDING todo destino es válido
		{StatusPending, StatusPending, true},
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		// CONFIRMED no vuelve a PENDING
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusDelivered, true},
		{StatusConfirmed, StatusCancelled, true},
		// SHIPPED no vuelve a PENDING
		{StatusShipped, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	for _, terminal := range []Status{StatusDelivered, StatusCancelled} {
		for _, to := range AllStatuses {
			assert.False(t, CanTransition(terminal, to), "%s -> %s debe rechazarse", terminal, to)
		}
		assert.True(t, terminal.IsTerminal())
	}
	assert.False(t, StatusPending.IsTerminal())
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(StatusPending))
	assert.True(t, CanCancel(StatusConfirmed))
	assert.False(t, CanCancel(StatusShipped))
	assert.False(t, CanCancel(StatusDelivered))
	assert.False(t, CanCancel(StatusCancelled))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	s, err = ParseStatus("  DELIVERED ")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, s)

	_, err = ParseStatus("ENVIADO")
	require.Error(t, err)
	assert.ErrorIs(t, err, &ValidationError{})
	assert.Contains(t, err.Error(), "PENDING, CONFIRMED, SHIPPED, DELIVERED, CANCELLED")
}
