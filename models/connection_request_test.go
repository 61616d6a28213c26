package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatus_Terminal(t *testing.T) {
	assert.False(t, RequestStatusPending.Terminal())
	assert.True(t, RequestStatusAccepted.Terminal())
	assert.True(t, RequestStatusDeclined.Terminal())
	assert.True(t, RequestStatusCancelled.Terminal())
}

func TestConnectionRequest_Predicates(t *testing.T) {
	request := &ConnectionRequest{
		ID:         42,
		SenderID:   1,
		ReceiverID: 2,
		Status:     RequestStatusPending,
	}

	assert.True(t, request.IsParticipant(1))
	assert.True(t, request.IsParticipant(2))
	assert.False(t, request.IsParticipant(3))

	// Only the receiver accepts or declines
	assert.True(t, request.CanBeAccepted(2))
	assert.False(t, request.CanBeAccepted(1))
	assert.True(t, request.CanBeDeclined(2))
	assert.False(t, request.CanBeDeclined(1))

	// Only the sender cancels
	assert.True(t, request.CanBeCancelled(1))
	assert.False(t, request.CanBeCancelled(2))

	request.Status = RequestStatusAccepted
	assert.False(t, request.CanBeAccepted(2))
	assert.False(t, request.CanBeCancelled(1))
}

func TestNormalizePair(t *testing.T) {
	a, b := NormalizePair(7, 3)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(7), b)

	a, b = NormalizePair(3, 7)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(7), b)
}

func TestConnection_Other(t *testing.T) {
	conn := &Connection{User1ID: 3, User2ID: 7}

	assert.Equal(t, int64(7), conn.Other(3))
	assert.Equal(t, int64(3), conn.Other(7))
	assert.Equal(t, int64(0), conn.Other(99))
	assert.True(t, conn.Involves(3))
	assert.False(t, conn.Involves(99))
}

func TestBalanceDelta_IsZero(t *testing.T) {
	assert.True(t, BalanceDelta{}.IsZero())
	assert.False(t, BalanceDelta{Available: -5, Outgoing: 5}.IsZero())
	assert.False(t, BalanceDelta{Incoming: 1}.IsZero())
}
