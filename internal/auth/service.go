package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/internal/guestcart"
	"github.com/neonshoplabs/neonshop-backend/internal/users"
	pkgauth "github.com/neonshoplabs/neonshop-backend/pkg/auth"
	"github.com/neonshoplabs/neonshop-backend/pkg/auth/session"
	"github.com/neonshoplabs/neonshop-backend/pkg/config"
	"github.com/neonshoplabs/neonshop-backend/pkg/db"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
	"github.com/neonshoplabs/neonshop-backend/pkg/logger"
	"github.com/neonshoplabs/neonshop-backend/pkg/mailer"
	redisclient "github.com/neonshoplabs/neonshop-backend/pkg/redis"
	"github.com/neonshoplabs/neonshop-backend/pkg/security"
)

const (
	minPasswordLength = 8
	resetTokenBytes   = 32

	tokenKindPasswordReset     = "password_reset"
	tokenKindEmailVerification = "email_verify"
)

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type cartMerger interface {
	ProductIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
	MergeGuestItems(ctx context.Context, userID uuid.UUID, guestItems []guestcart.Item) (int, error)
}

type guestCartStore interface {
	SyncWithUserCart(ctx context.Context, token string, userProductIDs []string) []guestcart.Item
	ClearCart(ctx context.Context, token string) error
}

type oneTimeTokenStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	GetDel(ctx context.Context, key string) (string, error)
	OneTimeTokenKey(kind, token string) string
}

type emailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Service exposes authentication, session, and account-token flows.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (users.UserDTO, error)
	Login(ctx context.Context, input LoginInput) (LoginResultDTO, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (TokenPairDTO, error)
	Logout(ctx context.Context, accessID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	RequestEmailVerification(ctx context.Context, email string) error
	ConfirmEmailVerification(ctx context.Context, token string) error
}

// ServiceParams groups dependencies for the auth service.
type ServiceParams struct {
	Users     userRepository
	Sessions  sessionManager
	Carts     cartMerger
	GuestCart guestCartStore
	Tokens    oneTimeTokenStore
	Mail      emailSender
	JWT       config.JWTConfig
	Password  config.PasswordConfig
	TokenTTLs config.TokenConfig
	Logger    *logger.Logger
}

type service struct {
	users     userRepository
	sessions  sessionManager
	carts     cartMerger
	guestCart guestCartStore
	tokens    oneTimeTokenStore
	mail      emailSender
	jwt       config.JWTConfig
	password  config.PasswordConfig
	tokenTTLs config.TokenConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds an auth service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.GuestCart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest cart store is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token store is required")
	}
	if params.Mail == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mail sender is required")
	}
	return &service{
		users:     params.Users,
		sessions:  params.Sessions,
		carts:     params.Carts,
		guestCart: params.GuestCart,
		tokens:    params.Tokens,
		mail:      params.Mail,
		jwt:       params.JWT,
		password:  params.Password,
		tokenTTLs: params.TokenTTLs,
		logg:      params.Logger,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates a customer account and kicks off email verification.
func (s *service) Register(ctx context.Context, input RegisterInput) (users.UserDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return users.UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return users.UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return users.UserDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Phone:        input.Phone,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email is already registered")
		}
		return users.UserDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	// Verification email is best effort; the account exists either way.
	if err := s.issueEmailVerification(ctx, user); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("email verification issue failed for %s: %v", user.Email, err))
	}

	return users.ToDTO(user), nil
}

// Login verifies credentials, opens a refresh session, and reconciles the
// guest cart when a guest token is supplied. Reconciliation failures are
// logged and never fail the login.
func (s *service) Login(ctx context.Context, input LoginInput) (LoginResultDTO, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResultDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return LoginResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return LoginResultDTO{}, pkgerrors.New(pkgerrors.CodeForbidden, "account is deactivated")
	}

	match, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return LoginResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return LoginResultDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	accessID := session.NewAccessID()
	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return LoginResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}

	accessToken, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return LoginResultDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("last login update failed for %s: %v", user.Email, err))
	}

	merged := 0
	if token := strings.TrimSpace(input.GuestToken); token != "" {
		merged = s.reconcileGuestCart(ctx, user.ID, token)
	}

	return LoginResultDTO{
		User:            users.ToDTO(user),
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		MergedCartItems: merged,
	}, nil
}

func (s *service) reconcileGuestCart(ctx context.Context, userID uuid.UUID, token string) int {
	userProductIDs, err := s.carts.ProductIDs(ctx, userID)
	if err != nil {
		s.warn(ctx, fmt.Sprintf("guest cart reconciliation skipped, cart unavailable: %v", err))
		return 0
	}

	delta := s.guestCart.SyncWithUserCart(ctx, token, userProductIDs)
	if len(delta) == 0 {
		if err := s.guestCart.ClearCart(ctx, token); err != nil {
			s.warn(ctx, fmt.Sprintf("guest cart clear failed: %v", err))
		}
		return 0
	}

	merged, err := s.carts.MergeGuestItems(ctx, userID, delta)
	if err != nil {
		s.warn(ctx, fmt.Sprintf("guest cart merge failed after %d items: %v", merged, err))
		return merged
	}
	if err := s.guestCart.ClearCart(ctx, token); err != nil {
		s.warn(ctx, fmt.Sprintf("guest cart clear failed: %v", err))
	}
	return merged
}

// Refresh rotates the refresh session and mints a new access token. The
// expired access token identifies the session being rotated.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (TokenPairDTO, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid refresh token")
		}
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	newAccessToken, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID: claims.UserID,
		Role:   claims.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return TokenPairDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return TokenPairDTO{AccessToken: newAccessToken, RefreshToken: newRefreshToken}, nil
}

// Logout revokes the refresh session behind the given access ID.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

// RequestPasswordReset issues a single-use reset token. Unknown emails are
// accepted silently so the endpoint does not leak account existence.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	token, err := s.storeOneTimeToken(ctx, tokenKindPasswordReset, user.ID, s.tokenTTLs.PasswordResetTTL)
	if err != nil {
		return err
	}

	return s.send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Reset your NeonShop password",
		Body:    fmt.Sprintf("Use this token to reset your password: %s", token),
	})
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	userID, err := s.consumeOneTimeToken(ctx, tokenKindPasswordReset, token)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

// RequestEmailVerification re-sends a verification token for an unverified
// account. Unknown and already verified emails are accepted silently.
func (s *service) RequestEmailVerification(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.EmailVerifiedAt != nil {
		return nil
	}
	return s.issueEmailVerification(ctx, user)
}

// ConfirmEmailVerification consumes a verification token and marks the
// account verified.
func (s *service) ConfirmEmailVerification(ctx context.Context, token string) error {
	userID, err := s.consumeOneTimeToken(ctx, tokenKindEmailVerification, token)
	if err != nil {
		return err
	}
	if err := s.users.MarkEmailVerified(ctx, userID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark email verified")
	}
	return nil
}

func (s *service) issueEmailVerification(ctx context.Context, user *models.User) error {
	token, err := s.storeOneTimeToken(ctx, tokenKindEmailVerification, user.ID, s.tokenTTLs.EmailVerificationTTL)
	if err != nil {
		return err
	}
	return s.send(ctx, mailer.Message{
		To:      user.Email,
		Subject: "Verify your NeonShop email",
		Body:    fmt.Sprintf("Use this token to verify your email: %s", token),
	})
}

func (s *service) storeOneTimeToken(ctx context.Context, kind string, userID uuid.UUID, ttl time.Duration) (string, error) {
	token, err := security.GenerateToken(resetTokenBytes)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate token")
	}
	ok, err := s.tokens.SetNX(ctx, s.tokens.OneTimeTokenKey(kind, token), userID.String(), ttl)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store token")
	}
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "token collision")
	}
	return token, nil
}

func (s *service) consumeOneTimeToken(ctx context.Context, kind, token string) (uuid.UUID, error) {
	if strings.TrimSpace(token) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	raw, err := s.tokens.GetDel(ctx, s.tokens.OneTimeTokenKey(kind, token))
	if err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "token is invalid or expired")
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume token")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "malformed token payload")
	}
	return userID, nil
}

func (s *service) send(ctx context.Context, msg mailer.Message) error {
	if err := s.mail.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send mail")
	}
	return nil
}

func (s *service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
