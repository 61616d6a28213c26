package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skillswap/config"
	"skillswap/events"
	"skillswap/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
	sessionTTL      time.Duration
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, cfg *config.Config) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: cfg.StartingBalance,
		sessionTTL:      cfg.SessionTTL,
	}
}

// Register creates a user, seeds their wallet with the starting balance
// and writes the initial allocation ledger entry, all in one transaction.
func (s *userService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	fullName = strings.TrimSpace(fullName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	wallet, err := uow.WalletRepository().Create(ctx, user.ID, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	allocation := &models.Transaction{
		WalletID: wallet.ID,
		Amount:   s.startingBalance,
		Type:     models.TransactionTypeInitialAllocation,
		Status:   models.TransactionStatusCompleted,
		Note:     "starting credit allocation",
	}
	if err := uow.TransactionRepository().Append(ctx, allocation); err != nil {
		return nil, fmt.Errorf("failed to append initial allocation: %w", err)
	}

	uow.EventBus().Publish(events.UserRegisteredEvent{
		UserID:          user.ID,
		Email:           user.Email,
		StartingBalance: s.startingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userId": user.ID,
		"email":  user.Email,
	}).Info("User registered")
	return user, nil
}

// Login verifies credentials and issues an opaque session token
func (s *userService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return session, nil
}

// Authenticate resolves a session token to its user
func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrInvalidCredentials
	}

	user, err := uow.UserRepository().GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID retrieves a user by id
func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
