package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"fanverse/pkg/fanrpc"
	"fanverse/services/auth-service/internal/domain"
	"fanverse/services/auth-service/internal/infrastructure/security"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ConfirmEmail(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TokenCache interface {
	SaveRefresh(ctx context.Context, refreshToken, userID string, ttl time.Duration) error
	ConsumeRefresh(ctx context.Context, refreshToken string) (string, error)
	DeleteRefresh(ctx context.Context, refreshToken string) error
	SaveConfirmToken(ctx context.Context, token, userID string, ttl time.Duration) error
	GetConfirmToken(ctx context.Context, token string) (string, error)
	DeleteConfirmToken(ctx context.Context, token string) error
	AcquireResendSlot(ctx context.Context, email string, cooldown time.Duration) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenManager interface {
	Generate(userID string) (security.TokenPair, error)
	ValidateAccessToken(token string) (string, error)
	ValidateRefreshToken(token string) (string, error)
	RefreshTTL() time.Duration
}

type Mailer interface {
	SendConfirmationEmail(ctx context.Context, toEmail, username, token string) error
}

type Options struct {
	RequireEmailConfirmation bool
	ConfirmationTTL          time.Duration
	ResendCooldown           time.Duration
}

type AuthUseCase struct {
	userRepo      UserRepository
	tokenCache    TokenCache
	hasher        PasswordHasher
	tokenManager  TokenManager
	mailer        Mailer
	profileClient fanrpc.ProfileServiceClient
	opts          Options
	log           *zap.Logger
	now           func() time.Time
	// mailTimeout bounds confirmation emails sent after signup returned.
	mailTimeout time.Duration
}

func NewAuthUseCase(
	ur UserRepository,
	tc TokenCache,
	h PasswordHasher,
	tm TokenManager,
	m Mailer,
	pc fanrpc.ProfileServiceClient,
	opts Options,
	log *zap.Logger,
) *AuthUseCase {
	if opts.ConfirmationTTL <= 0 {
		opts.ConfirmationTTL = 24 * time.Hour
	}
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthUseCase{
		userRepo:      ur,
		tokenCache:    tc,
		hasher:        h,
		tokenManager:  tm,
		mailer:        m,
		profileClient: pc,
		opts:          opts,
		log:           log,
		now:           time.Now,
		mailTimeout:   30 * time.Second,
	}
}

type SignUpResult struct {
	User   *domain.User
	Tokens *security.TokenPair
}

type SignInResult struct {
	User   *domain.User
	Tokens security.TokenPair
}

func (uc *AuthUseCase) SignUp(ctx context.Context, username, email, password string) (*SignUpResult, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateSignUp(username, email, password); err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Password: hash,
	}
	if !uc.opts.RequireEmailConfirmation {
		confirmedAt := uc.now()
		user.EmailConfirmedAt = &confirmedAt
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	_, err = uc.profileClient.CreateProfile(ctx, &fanrpc.CreateProfileRequest{
		UserID:   user.ID.String(),
		Email:    email,
		Username: username,
		Verified: user.EmailConfirmed(),
	})
	if err != nil {
		// Without a profile the account cannot log in; drop it so the
		// address stays free for a retry.
		if delErr := uc.userRepo.Delete(context.WithoutCancel(ctx), user.ID); delErr != nil {
			uc.log.Error("failed to roll back user", zap.String("user_id", user.ID.String()), zap.Error(delErr))
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	if uc.opts.RequireEmailConfirmation {
		if err := uc.issueConfirmation(ctx, user, true); err != nil {
			// The account exists; the user can ask for another email.
			uc.log.Error("failed to issue confirmation", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
		return &SignUpResult{User: user}, nil
	}

	tokens, err := uc.generateAndSaveTokens(ctx, user.ID.String())
	if err != nil {
		return nil, err
	}
	return &SignUpResult{User: user, Tokens: &tokens}, nil
}

// SignIn authenticates unconfirmed accounts too; callers read
// User.EmailConfirmed to gate verified-only features.
func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := uc.hasher.Compare(user.Password, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := uc.generateAndSaveTokens(ctx, user.ID.String())
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user, Tokens: tokens}, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, oldRefreshToken string) (*SignInResult, error) {
	userID, err := uc.tokenManager.ValidateRefreshToken(oldRefreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	cachedID, err := uc.tokenCache.ConsumeRefresh(ctx, oldRefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	if cachedID != userID {
		return nil, domain.ErrInvalidToken
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	tokens, err := uc.generateAndSaveTokens(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &SignInResult{User: user, Tokens: tokens}, nil
}

func (uc *AuthUseCase) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return uc.tokenCache.DeleteRefresh(ctx, refreshToken)
}

func (uc *AuthUseCase) ValidateAccess(token string) (string, error) {
	userID, err := uc.tokenManager.ValidateAccessToken(token)
	if err != nil {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

func (uc *AuthUseCase) ConfirmEmail(ctx context.Context, token string) error {
	userIDStr, err := uc.tokenCache.GetConfirmToken(ctx, token)
	if err != nil {
		return domain.ErrInvalidToken
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return domain.ErrInvalidToken
	}

	if err := uc.userRepo.ConfirmEmail(ctx, uid, uc.now()); err != nil {
		return err
	}

	_, err = uc.profileClient.SetVerified(ctx, &fanrpc.SetVerifiedRequest{UserID: userIDStr, Verified: true})
	if err != nil {
		// The auth record is authoritative; the profile flag catches up on the next confirm.
		uc.log.Warn("failed to sync verified flag", zap.String("user_id", userIDStr), zap.Error(err))
	}

	_ = uc.tokenCache.DeleteConfirmToken(ctx, token)
	return nil
}

func (uc *AuthUseCase) ResendConfirmation(ctx context.Context, email string) error {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailConfirmed() {
		return domain.ErrAlreadyConfirmed
	}
	return uc.issueConfirmation(ctx, user, false)
}

// issueConfirmation stores a fresh confirmation token and emails it. After
// signup the email goes out in the background; a resend reports delivery
// failures to the caller.
func (uc *AuthUseCase) issueConfirmation(ctx context.Context, user *domain.User, async bool) error {
	ok, err := uc.tokenCache.AcquireResendSlot(ctx, user.Email, uc.opts.ResendCooldown)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrResendTooSoon
	}

	token := uuid.NewString()
	if err := uc.tokenCache.SaveConfirmToken(ctx, token, user.ID.String(), uc.opts.ConfirmationTTL); err != nil {
		return err
	}

	if !async {
		if err := uc.mailer.SendConfirmationEmail(ctx, user.Email, user.Username, token); err != nil {
			return fmt.Errorf("send confirmation: %w", err)
		}
		return nil
	}

	go func() {
		mailCtx, cancel := context.WithTimeout(context.Background(), uc.mailTimeout)
		defer cancel()
		if err := uc.mailer.SendConfirmationEmail(mailCtx, user.Email, user.Username, token); err != nil {
			uc.log.Error("failed to send confirmation email", zap.String("email", user.Email), zap.Error(err))
			return
		}
		uc.log.Info("confirmation email sent", zap.String("email", user.Email))
	}()
	return nil
}

func (uc *AuthUseCase) generateAndSaveTokens(ctx context.Context, userID string) (security.TokenPair, error) {
	tokens, err := uc.tokenManager.Generate(userID)
	if err != nil {
		return security.TokenPair{}, err
	}

	if err := uc.tokenCache.SaveRefresh(ctx, tokens.RefreshToken, userID, uc.tokenManager.RefreshTTL()); err != nil {
		return security.TokenPair{}, err
	}
	return tokens, nil
}

func validateSignUp(username, email, password string) error {
	if username == "" || len(username) > 50 {
		return fmt.Errorf("%w: username must be 1-50 characters", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: malformed email", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	return nil
}
