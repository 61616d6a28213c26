package service

import (
	"context"
	"fmt"

	"skillswap/models"
)

const defaultHistoryLimit = 50

type walletService struct {
	uowFactory UnitOfWorkFactory
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory UnitOfWorkFactory) WalletService {
	return &walletService{
		uowFactory: uowFactory,
	}
}

// GetWallet returns the user's current balances
func (s *walletService) GetWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

// ListTransactions returns the user's ledger entries, newest first
func (s *walletService) ListTransactions(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}

	transactions, err := uow.TransactionRepository().ListForWallet(ctx, wallet.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}
