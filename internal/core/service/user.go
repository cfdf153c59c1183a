package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/storage"
)

// TokenVerifier checks that a token authenticates a phone.
type TokenVerifier interface {
	Verify(ctx context.Context, id, phone string) bool
}

// UserService manages user accounts. Every operation except Create
// requires a valid token for the target phone.
type UserService struct {
	store    storage.RecordStore
	hasher   PasswordHasher
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(store storage.RecordStore, hasher PasswordHasher, verifier TokenVerifier, opts ...Option) *UserService {
	o := applyOptions(opts)
	return &UserService{
		store:    store,
		hasher:   hasher,
		verifier: verifier,
		logger:   o.logger,
	}
}

// CreateUserRequest contains the fields of a new account.
type CreateUserRequest struct {
	FirstName    string `validate:"required"`
	LastName     string `validate:"required"`
	Phone        string `validate:"phone"`
	Password     string `validate:"required"`
	TOSAgreement bool   `validate:"eq=true"`
}

// Create registers a new user. The password is stored only as a digest.
func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) error {
	if err := domain.Validate(req); err != nil {
		return domain.ErrUserFieldsMissing
	}

	if _, err := loadUser(ctx, s.store, req.Phone); err == nil {
		return domain.ErrUserExists
	} else if !errors.Is(err, storage.ErrRecordNotFound) {
		return domain.ErrUserCreate.WithCause(err)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.ErrPasswordHash.WithCause(err)
	}

	user := &domain.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Phone:          req.Phone,
		HashedPassword: digest,
		TOSAgreement:   true,
	}
	if err := storage.CreateJSON(ctx, s.store, storage.CollectionUsers, user.Phone, user); err != nil {
		if errors.Is(err, storage.ErrRecordExists) {
			return domain.ErrUserExists
		}
		return domain.ErrUserCreate.WithCause(err)
	}

	s.logger.Info("user created", "phone", user.Phone)
	return nil
}

// Get returns the user without the password digest.
func (s *UserService) Get(ctx context.Context, phone, tokenID string) (*domain.UserView, error) {
	if !domain.IsValidPhone(phone) {
		return nil, domain.ErrUserPhoneMissing
	}
	if !s.verifier.Verify(ctx, tokenID, phone) {
		return nil, domain.ErrAuthTokenInvalid
	}

	user, err := loadUser(ctx, s.store, phone)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrUserRead.WithCause(err)
	}
	return user.View(), nil
}

// UpdateUserRequest names the fields to change. Empty fields are left as is.
type UpdateUserRequest struct {
	Phone     string
	FirstName string
	LastName  string
	Password  string
}

func (r *UpdateUserRequest) empty() bool {
	return r.FirstName == "" && r.LastName == "" && r.Password == ""
}

// Update changes the provided fields of an existing user.
func (s *UserService) Update(ctx context.Context, req *UpdateUserRequest, tokenID string) error {
	if !domain.IsValidPhone(req.Phone) {
		return domain.ErrUserUpdatePhoneMissing
	}
	if req.empty() {
		return domain.ErrUserUpdateFieldsMissing
	}
	if !s.verifier.Verify(ctx, tokenID, req.Phone) {
		return domain.ErrAuthTokenInvalid
	}

	user, err := loadUser(ctx, s.store, req.Phone)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return domain.ErrUserUpdateTarget
		}
		return domain.ErrUserRead.WithCause(err)
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Password != "" {
		digest, err := s.hasher.Hash(req.Password)
		if err != nil {
			return domain.ErrPasswordHash.WithCause(err)
		}
		user.HashedPassword = digest
	}

	if err := storage.UpdateJSON(ctx, s.store, storage.CollectionUsers, user.Phone, user); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return domain.ErrUserUpdateTarget
		}
		return domain.ErrUserUpdate.WithCause(err)
	}
	return nil
}

// Delete removes a user. Tokens issued to the user are left in place and
// expire on their own.
func (s *UserService) Delete(ctx context.Context, phone, tokenID string) error {
	if !domain.IsValidPhone(phone) {
		return domain.ErrUserPhoneMissing
	}
	if !s.verifier.Verify(ctx, tokenID, phone) {
		return domain.ErrAuthTokenInvalid
	}

	if _, err := loadUser(ctx, s.store, phone); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return domain.ErrUserDeleteTarget
		}
		return domain.ErrUserRead.WithCause(err)
	}

	if err := s.store.Delete(ctx, storage.CollectionUsers, phone); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return domain.ErrUserDeleteTarget
		}
		return domain.ErrUserDelete.WithCause(err)
	}

	s.logger.Info("user deleted", "phone", phone)
	return nil
}

func loadUser(ctx context.Context, store storage.RecordStore, phone string) (*domain.User, error) {
	var user domain.User
	if err := storage.ReadJSON(ctx, store, storage.CollectionUsers, phone, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
