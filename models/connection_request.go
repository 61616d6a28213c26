package models

import (
	"time"
)

// RequestStatus represents the state of a connection request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusDeclined  RequestStatus = "declined"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Terminal reports whether the status can never change again.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusAccepted || s == RequestStatusDeclined || s == RequestStatusCancelled
}

// ConnectionRequest represents an ask from a sender to a receiver to form
// a connection, with credits held in escrow until it resolves.
type ConnectionRequest struct {
	ID          int64         `db:"id"`
	SenderID    int64         `db:"sender_id"`
	ReceiverID  int64         `db:"receiver_id"`
	Status      RequestStatus `db:"status"`
	CreditsHeld int64         `db:"credits_held"`
	CreatedAt   time.Time     `db:"created_at"`
	ResolvedAt  *time.Time    `db:"resolved_at"`
}

// IsParticipant checks if a user is involved in the request
func (r *ConnectionRequest) IsParticipant(userID int64) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

// CanBeAccepted checks if the request can be accepted by the given user
func (r *ConnectionRequest) CanBeAccepted(userID int64) bool {
	return r.Status == RequestStatusPending && r.ReceiverID == userID
}

// CanBeDeclined checks if the request can be declined by the given user
func (r *ConnectionRequest) CanBeDeclined(userID int64) bool {
	return r.Status == RequestStatusPending && r.ReceiverID == userID
}

// CanBeCancelled checks if the request can be cancelled by the given user
func (r *ConnectionRequest) CanBeCancelled(userID int64) bool {
	return r.Status == RequestStatusPending && r.SenderID == userID
}
