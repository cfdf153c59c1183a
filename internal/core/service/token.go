package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yndnr/stakewatch/internal/core/domain"
	"github.com/yndnr/stakewatch/internal/storage"
	"github.com/yndnr/stakewatch/internal/telemetry/metric"
)

// maxIDAttempts bounds retries when a freshly generated token id collides.
const maxIDAttempts = 3

// TokenService issues, reads, extends and revokes tokens, and verifies
// that a token authenticates a phone.
type TokenService struct {
	store  storage.RecordStore
	hasher PasswordHasher
	now    func() time.Time
	ttl    time.Duration
	logger *slog.Logger
}

// NewTokenService creates a TokenService.
func NewTokenService(store storage.RecordStore, hasher PasswordHasher, opts ...Option) *TokenService {
	o := applyOptions(opts)
	if o.ttl <= 0 {
		o.ttl = domain.DefaultTokenTTL
	}
	return &TokenService{
		store:  store,
		hasher: hasher,
		now:    o.now,
		ttl:    o.ttl,
		logger: o.logger,
	}
}

// IssueTokenRequest contains the credentials for a new token.
type IssueTokenRequest struct {
	Phone    string `validate:"phone"`
	Password string `validate:"required"`
}

// Issue checks the credentials and stores a new token for the phone.
func (s *TokenService) Issue(ctx context.Context, req *IssueTokenRequest) (*domain.Token, error) {
	if err := domain.Validate(req); err != nil {
		return nil, domain.ErrTokenCredentialsMissing
	}

	user, err := loadUser(ctx, s.store, req.Phone)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, domain.ErrTokenUserUnknown
		}
		return nil, domain.ErrUserRead.WithCause(err)
	}

	ok, err := s.hasher.Verify(req.Password, user.HashedPassword)
	if err != nil {
		return nil, domain.ErrPasswordHash.WithCause(err)
	}
	if !ok {
		return nil, domain.ErrTokenPasswordMismatch
	}

	for attempt := 1; ; attempt++ {
		tok, err := domain.NewToken(req.Phone, s.now(), s.ttl)
		if err != nil {
			return nil, domain.ErrTokenCreate.WithCause(err)
		}

		err = storage.CreateJSON(ctx, s.store, storage.CollectionTokens, tok.ID, tok)
		if err == nil {
			metric.TokensIssued.Inc()
			return tok, nil
		}
		if !errors.Is(err, storage.ErrRecordExists) || attempt >= maxIDAttempts {
			return nil, domain.ErrTokenCreate.WithCause(err)
		}
		s.logger.Warn("token id collision, regenerating", "attempt", attempt)
	}
}

// Get returns the stored token.
func (s *TokenService) Get(ctx context.Context, id string) (*domain.Token, error) {
	if !domain.IsValidTokenID(id) {
		return nil, domain.ErrTokenIDInvalid
	}

	tok, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, domain.ErrTokenRead.WithCause(err)
	}
	return tok, nil
}

// ExtendTokenRequest asks for a token's expiry to be pushed out.
type ExtendTokenRequest struct {
	ID     string `validate:"tokenid"`
	Extend bool   `validate:"eq=true"`
}

// Extend resets the expiry of an unexpired token. Expired tokens are never
// extended.
func (s *TokenService) Extend(ctx context.Context, req *ExtendTokenRequest) (*domain.Token, error) {
	if err := domain.Validate(req); err != nil {
		return nil, domain.ErrTokenExtendInvalid
	}

	tok, err := s.load(ctx, req.ID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, domain.ErrTokenExtendTarget
		}
		return nil, domain.ErrTokenRead.WithCause(err)
	}

	now := s.now()
	if tok.IsExpired(now) {
		return nil, domain.ErrTokenExpired
	}
	tok.Extend(now, s.ttl)

	if err := storage.UpdateJSON(ctx, s.store, storage.CollectionTokens, tok.ID, tok); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil, domain.ErrTokenExtendTarget
		}
		return nil, domain.ErrTokenUpdate.WithCause(err)
	}
	return tok, nil
}

// Revoke deletes a token.
func (s *TokenService) Revoke(ctx context.Context, id string) error {
	if !domain.IsValidTokenID(id) {
		return domain.ErrTokenRevokeIDMissing
	}

	if _, err := s.load(ctx, id); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return domain.ErrTokenRevokeTarget
		}
		return domain.ErrTokenRead.WithCause(err)
	}

	if err := s.store.Delete(ctx, storage.CollectionTokens, id); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return domain.ErrTokenRevokeTarget
		}
		return domain.ErrTokenDelete.WithCause(err)
	}
	return nil
}

// Verify reports whether id names a stored, unexpired token issued for
// phone. It never fails; any lookup problem counts as not valid.
func (s *TokenService) Verify(ctx context.Context, id, phone string) bool {
	if id == "" || phone == "" {
		return false
	}
	tok, err := s.load(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrRecordNotFound) {
			s.logger.Warn("token lookup failed during verify", "error", err)
		}
		return false
	}
	return tok.ValidFor(phone, s.now())
}

func (s *TokenService) load(ctx context.Context, id string) (*domain.Token, error) {
	var tok domain.Token
	if err := storage.ReadJSON(ctx, s.store, storage.CollectionTokens, id, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}
