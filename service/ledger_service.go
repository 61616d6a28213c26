package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillswap/config"
	"skillswap/events"
	"skillswap/models"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// Postgres error codes that signal a concurrent-write conflict worth one
// internal retry with fresh reads.
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
)

type ledgerService struct {
	uowFactory  UnitOfWorkFactory
	requestCost int64
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, cfg *config.Config) LedgerService {
	return &ledgerService{
		uowFactory:  uowFactory,
		requestCost: cfg.RequestCost,
	}
}

// run executes fn inside a unit of work, retrying exactly once on a
// storage-level serialization conflict before surfacing ErrConflict.
func (s *ledgerService) run(ctx context.Context, fn func(uow UnitOfWork) error) error {
	err := s.runOnce(ctx, fn)
	if !isSerializationFailure(err) {
		return err
	}

	log.WithError(err).Warn("Ledger operation hit a write conflict, retrying with fresh reads")
	err = s.runOnce(ctx, fn)
	if isSerializationFailure(err) {
		return ErrConflict
	}
	return err
}

func (s *ledgerService) runOnce(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgCodeSerializationFailure || pgErr.Code == pgCodeDeadlockDetected
}

// SendRequest creates a pending request and holds the request cost in escrow
func (s *ledgerService) SendRequest(ctx context.Context, senderID, receiverID int64) (*models.ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, ErrSelfRequest
	}

	var request *models.ConnectionRequest
	err := s.run(ctx, func(uow UnitOfWork) error {
		receiver, err := uow.UserRepository().GetByID(ctx, receiverID)
		if err != nil {
			return fmt.Errorf("failed to get receiver: %w", err)
		}
		if receiver == nil {
			return ErrUserNotFound
		}

		connected, err := uow.ConnectionRepository().ActiveBetween(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("failed to check existing connection: %w", err)
		}
		if connected {
			return ErrAlreadyConnected
		}

		pending, err := uow.ConnectionRequestRepository().HasPendingBetween(ctx, senderID, receiverID)
		if err != nil {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}
		if pending {
			return ErrDuplicateRequest
		}

		// Move the cost from available to outgoing on the sender. The
		// guarded update fails before any request row exists, so an
		// insufficient balance leaves no partial state behind.
		senderWallet, err := uow.WalletRepository().ApplyDelta(ctx, senderID, models.BalanceDelta{
			Available: -s.requestCost,
			Outgoing:  s.requestCost,
		})
		if err != nil {
			return err
		}

		if _, err := uow.WalletRepository().ApplyDelta(ctx, receiverID, models.BalanceDelta{
			Incoming: s.requestCost,
		}); err != nil {
			return err
		}

		request = &models.ConnectionRequest{
			SenderID:    senderID,
			ReceiverID:  receiverID,
			Status:      models.RequestStatusPending,
			CreditsHeld: s.requestCost,
		}
		if err := uow.ConnectionRequestRepository().Create(ctx, request); err != nil {
			return err
		}

		hold := &models.Transaction{
			WalletID:            senderWallet.ID,
			Amount:              s.requestCost,
			Type:                models.TransactionTypeRequestSent,
			Status:              models.TransactionStatusPending,
			RelatedUserID:       &receiverID,
			ConnectionRequestID: &request.ID,
			Note:                "credits held for connection request",
		}
		if err := uow.TransactionRepository().Append(ctx, hold); err != nil {
			return fmt.Errorf("failed to append hold entry: %w", err)
		}

		uow.EventBus().Publish(events.RequestSentEvent{
			RequestID:   request.ID,
			SenderID:    senderID,
			ReceiverID:  receiverID,
			CreditsHeld: s.requestCost,
		})
		publishBalanceChange(uow, senderID, senderWallet, models.TransactionTypeRequestSent, s.requestCost)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"requestId":  request.ID,
		"senderId":   senderID,
		"receiverId": receiverID,
	}).Info("Connection request sent")
	return request, nil
}

// AcceptRequest settles the hold: sender forfeits, receiver is credited
func (s *ledgerService) AcceptRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error) {
	var request *models.ConnectionRequest
	err := s.run(ctx, func(uow UnitOfWork) error {
		req, err := s.loadForTransition(ctx, uow, requestID)
		if err != nil {
			return err
		}
		if req.ReceiverID != actingUserID {
			return ErrForbidden
		}

		if err := s.markResolved(ctx, uow, req, models.RequestStatusAccepted); err != nil {
			return err
		}

		if _, err := uow.ConnectionRepository().Create(ctx, req.SenderID, req.ReceiverID); err != nil {
			return err
		}

		// The sender's held credits are spent, not refunded.
		if _, err := uow.WalletRepository().ApplyDelta(ctx, req.SenderID, models.BalanceDelta{
			Outgoing: -req.CreditsHeld,
		}); err != nil {
			return err
		}

		receiverWallet, err := uow.WalletRepository().ApplyDelta(ctx, req.ReceiverID, models.BalanceDelta{
			Available: req.CreditsHeld,
			Incoming:  -req.CreditsHeld,
		})
		if err != nil {
			return err
		}

		if err := s.settleHold(ctx, uow, req.ID, models.TransactionStatusCompleted); err != nil {
			return err
		}

		reward := &models.Transaction{
			WalletID:            receiverWallet.ID,
			Amount:              req.CreditsHeld,
			Type:                models.TransactionTypeRequestAccepted,
			Status:              models.TransactionStatusCompleted,
			RelatedUserID:       &req.SenderID,
			ConnectionRequestID: &req.ID,
			Note:                "credits earned for accepting a connection request",
		}
		if err := uow.TransactionRepository().Append(ctx, reward); err != nil {
			return fmt.Errorf("failed to append reward entry: %w", err)
		}

		publishBalanceChange(uow, req.ReceiverID, receiverWallet, models.TransactionTypeRequestAccepted, req.CreditsHeld)
		uow.EventBus().Publish(events.RequestResolvedEvent{
			RequestID:  req.ID,
			SenderID:   req.SenderID,
			ReceiverID: req.ReceiverID,
			Status:     models.RequestStatusAccepted,
		})

		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"requestId": request.ID,
		"userId":    actingUserID,
	}).Info("Connection request accepted")
	return request, nil
}

// DeclineRequest refunds the hold to the sender
func (s *ledgerService) DeclineRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error) {
	return s.release(ctx, requestID, actingUserID, models.RequestStatusDeclined)
}

// CancelRequest refunds the hold to the sender; only the sender may cancel
func (s *ledgerService) CancelRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error) {
	return s.release(ctx, requestID, actingUserID, models.RequestStatusCancelled)
}

// release handles the decline and cancel paths, which differ only in who
// may act and the terminal status recorded.
func (s *ledgerService) release(ctx context.Context, requestID, actingUserID int64, to models.RequestStatus) (*models.ConnectionRequest, error) {
	var request *models.ConnectionRequest
	err := s.run(ctx, func(uow UnitOfWork) error {
		req, err := s.loadForTransition(ctx, uow, requestID)
		if err != nil {
			return err
		}
		switch to {
		case models.RequestStatusDeclined:
			if req.ReceiverID != actingUserID {
				return ErrForbidden
			}
		case models.RequestStatusCancelled:
			if req.SenderID != actingUserID {
				return ErrForbidden
			}
		default:
			return fmt.Errorf("release called with non-release status %q", to)
		}

		if err := s.markResolved(ctx, uow, req, to); err != nil {
			return err
		}

		// Full refund of the hold.
		senderWallet, err := uow.WalletRepository().ApplyDelta(ctx, req.SenderID, models.BalanceDelta{
			Available: req.CreditsHeld,
			Outgoing:  -req.CreditsHeld,
		})
		if err != nil {
			return err
		}

		if _, err := uow.WalletRepository().ApplyDelta(ctx, req.ReceiverID, models.BalanceDelta{
			Incoming: -req.CreditsHeld,
		}); err != nil {
			return err
		}

		if err := s.settleHold(ctx, uow, req.ID, models.TransactionStatusRefunded); err != nil {
			return err
		}

		releaseType := models.TransactionTypeRequestDeclined
		if to == models.RequestStatusCancelled {
			releaseType = models.TransactionTypeRequestCancelled
		}
		release := &models.Transaction{
			WalletID:            senderWallet.ID,
			Amount:              req.CreditsHeld,
			Type:                releaseType,
			Status:              models.TransactionStatusRefunded,
			RelatedUserID:       &req.ReceiverID,
			ConnectionRequestID: &req.ID,
			Note:                "hold released back to available balance",
		}
		if err := uow.TransactionRepository().Append(ctx, release); err != nil {
			return fmt.Errorf("failed to append release entry: %w", err)
		}

		publishBalanceChange(uow, req.SenderID, senderWallet, releaseType, req.CreditsHeld)
		uow.EventBus().Publish(events.RequestResolvedEvent{
			RequestID:  req.ID,
			SenderID:   req.SenderID,
			ReceiverID: req.ReceiverID,
			Status:     to,
		})

		request = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"requestId": request.ID,
		"userId":    actingUserID,
		"status":    to,
	}).Info("Connection request released")
	return request, nil
}

// loadForTransition fetches a request that is about to change state.
func (s *ledgerService) loadForTransition(ctx context.Context, uow UnitOfWork, requestID int64) (*models.ConnectionRequest, error) {
	req, err := uow.ConnectionRequestRepository().GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// markResolved performs the status-guarded transition. A request that
// already left pending makes the guarded update a no-op, which is how a
// racing second transition is rejected.
func (s *ledgerService) markResolved(ctx context.Context, uow UnitOfWork, req *models.ConnectionRequest, to models.RequestStatus) error {
	transitioned, err := uow.ConnectionRequestRepository().MarkResolved(ctx, req.ID, to)
	if err != nil {
		return fmt.Errorf("failed to resolve request: %w", err)
	}
	if !transitioned {
		return ErrInvalidState
	}
	req.Status = to
	now := time.Now()
	req.ResolvedAt = &now
	return nil
}

// settleHold moves the pending hold entry for a request to its terminal status.
func (s *ledgerService) settleHold(ctx context.Context, uow UnitOfWork, requestID int64, to models.TransactionStatus) error {
	hold, err := uow.TransactionRepository().GetHoldForRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to get hold entry: %w", err)
	}
	if hold == nil {
		// A pending request always carries its hold; a missing one means
		// the ledger is corrupt and the transaction must not commit.
		return fmt.Errorf("no pending hold entry for request %d", requestID)
	}
	if err := uow.TransactionRepository().MarkStatus(ctx, hold.ID, models.TransactionStatusPending, to); err != nil {
		return fmt.Errorf("failed to settle hold entry: %w", err)
	}
	return nil
}

// ListPendingRequests returns pending requests involving the user
func (s *ledgerService) ListPendingRequests(ctx context.Context, userID int64) ([]*models.ConnectionRequest, error) {
	var requests []*models.ConnectionRequest
	err := s.runOnce(ctx, func(uow UnitOfWork) error {
		var err error
		requests, err = uow.ConnectionRequestRepository().ListPendingForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// ListConnections returns the user's active connections
func (s *ledgerService) ListConnections(ctx context.Context, userID int64) ([]*models.Connection, error) {
	var connections []*models.Connection
	err := s.runOnce(ctx, func(uow UnitOfWork) error {
		var err error
		connections, err = uow.ConnectionRepository().ListActiveForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	return connections, nil
}

func publishBalanceChange(uow UnitOfWork, userID int64, wallet *models.Wallet, txType models.TransactionType, amount int64) {
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          userID,
		Available:       wallet.Available,
		Outgoing:        wallet.Outgoing,
		Incoming:        wallet.Incoming,
		TransactionType: txType,
		Amount:          amount,
	})
}
