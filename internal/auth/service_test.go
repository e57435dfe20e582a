package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neonshoplabs/neonshop-backend/internal/guestcart"
	"github.com/neonshoplabs/neonshop-backend/internal/users"
	pkgauth "github.com/neonshoplabs/neonshop-backend/pkg/auth"
	"github.com/neonshoplabs/neonshop-backend/pkg/auth/session"
	"github.com/neonshoplabs/neonshop-backend/pkg/config"
	"github.com/neonshoplabs/neonshop-backend/pkg/db/models"
	pkgerrors "github.com/neonshoplabs/neonshop-backend/pkg/errors"
	"github.com/neonshoplabs/neonshop-backend/pkg/mailer"
	redisclient "github.com/neonshoplabs/neonshop-backend/pkg/redis"
	"github.com/neonshoplabs/neonshop-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if _, exists := s.byEmail[dto.Email]; exists {
		return nil, fmt.Errorf(`duplicate key value violates unique constraint "idx_users_email"`)
	}
	user := dto.ToModel()
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	s.byEmail[dto.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.LastLoginAt = &at
	return nil
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

func (s *stubUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	user.EmailVerifiedAt = &at
	return nil
}

type stubSessions struct {
	sessions map[string]string
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: map[string]string{}}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	s.sessions[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.sessions, accessID)
	return nil
}

type stubCartMerger struct {
	userProductIDs []string
	mergedItems    []guestcart.Item
	mergeErr       error
}

func (s *stubCartMerger) ProductIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.userProductIDs, nil
}

func (s *stubCartMerger) MergeGuestItems(ctx context.Context, userID uuid.UUID, guestItems []guestcart.Item) (int, error) {
	if s.mergeErr != nil {
		return 0, s.mergeErr
	}
	s.mergedItems = append(s.mergedItems, guestItems...)
	return len(guestItems), nil
}

type stubGuestStore struct {
	items   []guestcart.Item
	cleared bool
}

func (s *stubGuestStore) SyncWithUserCart(ctx context.Context, token string, userProductIDs []string) []guestcart.Item {
	return guestcart.Diff(s.items, userProductIDs)
}

func (s *stubGuestStore) ClearCart(ctx context.Context, token string) error {
	s.cleared = true
	s.items = nil
	return nil
}

type stubTokenStore struct {
	values map[string]string
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{values: map[string]string{}}
}

func (s *stubTokenStore) OneTimeTokenKey(kind, token string) string {
	return kind + ":" + token
}

func (s *stubTokenStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = fmt.Sprint(value)
	return true, nil
}

func (s *stubTokenStore) GetDel(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redisclient.ErrNotFound
	}
	delete(s.values, key)
	return value, nil
}

func (s *stubTokenStore) tokenOfKind(kind string) string {
	for key := range s.values {
		if strings.HasPrefix(key, kind+":") {
			return strings.TrimPrefix(key, kind+":")
		}
	}
	return ""
}

type stubMail struct {
	sent []mailer.Message
}

func (s *stubMail) Send(ctx context.Context, msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

type authFixture struct {
	svc      Service
	users    *stubUserRepo
	sessions *stubSessions
	carts    *stubCartMerger
	guest    *stubGuestStore
	tokens   *stubTokenStore
	mail     *stubMail
	jwt      config.JWTConfig
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	fixture := &authFixture{
		users:    newStubUserRepo(),
		sessions: newStubSessions(),
		carts:    &stubCartMerger{},
		guest:    &stubGuestStore{},
		tokens:   newStubTokenStore(),
		mail:     &stubMail{},
		jwt: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "neonshop-test",
			ExpirationMinutes: 15,
		},
	}
	svc, err := NewService(ServiceParams{
		Users:     fixture.users,
		Sessions:  fixture.sessions,
		Carts:     fixture.carts,
		GuestCart: fixture.guest,
		Tokens:    fixture.tokens,
		Mail:      fixture.mail,
		JWT:       fixture.jwt,
		TokenTTLs: config.TokenConfig{
			PasswordResetTTL:     30 * time.Minute,
			EmailVerificationTTL: 24 * time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	fixture.svc = svc
	return fixture
}

func (f *authFixture) register(t *testing.T, email, password string) users.UserDTO {
	t.Helper()
	dto, err := f.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Pat",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return dto
}

func TestRegisterHashesPasswordAndSendsVerification(t *testing.T) {
	fixture := newAuthFixture(t)
	dto := fixture.register(t, "Pat@Example.com", "s3cret-pass")

	if dto.Email != "pat@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}

	stored := fixture.users.byEmail["pat@example.com"]
	if stored.PasswordHash == "s3cret-pass" || stored.PasswordHash == "" {
		t.Fatal("expected password to be hashed")
	}
	match, err := security.VerifyPassword("s3cret-pass", stored.PasswordHash)
	if err != nil || !match {
		t.Fatalf("expected hash to verify, match=%v err=%v", match, err)
	}

	if len(fixture.mail.sent) != 1 || fixture.mail.sent[0].To != "pat@example.com" {
		t.Fatalf("expected one verification mail, got %+v", fixture.mail.sent)
	}
	if fixture.tokens.tokenOfKind("email_verify") == "" {
		t.Fatal("expected a stored verification token")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")

	_, err := fixture.svc.Register(context.Background(), RegisterInput{
		Email:     "pat@example.com",
		Password:  "another-pass",
		FirstName: "Pat",
		LastName:  "Doe",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginIssuesTokensAndSession(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")

	result, err := fixture.svc.Login(context.Background(), LoginInput{
		Email:    "pat@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(fixture.jwt, result.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != result.User.ID {
		t.Fatalf("expected claims for user %s, got %s", result.User.ID, claims.UserID)
	}
	if _, ok := fixture.sessions.sessions[claims.ID]; !ok {
		t.Fatal("expected a refresh session keyed by the token JTI")
	}
	if fixture.users.byEmail["pat@example.com"].LastLoginAt == nil {
		t.Fatal("expected last login timestamp")
	}
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")

	_, err := fixture.svc.Login(context.Background(), LoginInput{Email: "pat@example.com", Password: "wrong"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = fixture.svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "whatever"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}

	fixture.users.byEmail["pat@example.com"].IsActive = false
	_, err = fixture.svc.Login(context.Background(), LoginInput{Email: "pat@example.com", Password: "s3cret-pass"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for deactivated account, got %v", err)
	}
}

func TestLoginMergesGuestCartAndClearsIt(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")

	shared := uuid.NewString()
	fixture.carts.userProductIDs = []string{shared}
	fixture.guest.items = []guestcart.Item{
		{ProductID: shared, Quantity: 3},
		{ProductID: uuid.NewString(), Quantity: 2},
	}

	result, err := fixture.svc.Login(context.Background(), LoginInput{
		Email:      "pat@example.com",
		Password:   "s3cret-pass",
		GuestToken: "guest-token",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if result.MergedCartItems != 1 {
		t.Fatalf("expected 1 merged line, got %d", result.MergedCartItems)
	}
	if len(fixture.carts.mergedItems) != 1 || fixture.carts.mergedItems[0].ProductID == shared {
		t.Fatalf("expected only the missing line to be merged, got %+v", fixture.carts.mergedItems)
	}
	if !fixture.guest.cleared {
		t.Fatal("expected guest cart to be cleared after merge")
	}
}

func TestLoginSucceedsWhenGuestMergeFails(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")

	fixture.guest.items = []guestcart.Item{{ProductID: uuid.NewString(), Quantity: 1}}
	fixture.carts.mergeErr = errors.New("cart unavailable")

	result, err := fixture.svc.Login(context.Background(), LoginInput{
		Email:      "pat@example.com",
		Password:   "s3cret-pass",
		GuestToken: "guest-token",
	})
	if err != nil {
		t.Fatalf("login must not fail on merge errors: %v", err)
	}
	if result.MergedCartItems != 0 {
		t.Fatalf("expected no merged items, got %d", result.MergedCartItems)
	}
	if fixture.guest.cleared {
		t.Fatal("guest cart must be preserved when the merge fails")
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")

	result, err := fixture.svc.Login(context.Background(), LoginInput{Email: "pat@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := fixture.svc.Refresh(context.Background(), result.AccessToken, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == result.AccessToken || pair.RefreshToken == result.RefreshToken {
		t.Fatal("expected a rotated token pair")
	}

	_, err = fixture.svc.Refresh(context.Background(), result.AccessToken, result.RefreshToken)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for replayed refresh token, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")
	ctx := context.Background()

	if err := fixture.svc.RequestPasswordReset(ctx, "pat@example.com"); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	token := fixture.tokens.tokenOfKind("password_reset")
	if token == "" {
		t.Fatal("expected a stored reset token")
	}
	if len(fixture.mail.sent) != 2 {
		t.Fatalf("expected verification and reset mails, got %d", len(fixture.mail.sent))
	}

	if err := fixture.svc.ConfirmPasswordReset(ctx, token, "brand-new-pass"); err != nil {
		t.Fatalf("confirm reset: %v", err)
	}

	if _, err := fixture.svc.Login(ctx, LoginInput{Email: "pat@example.com", Password: "brand-new-pass"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	err := fixture.svc.ConfirmPasswordReset(ctx, token, "another-new-pass")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for replayed reset token, got %v", err)
	}
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	fixture := newAuthFixture(t)

	if err := fixture.svc.RequestPasswordReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected silent accept, got %v", err)
	}
	if len(fixture.mail.sent) != 0 {
		t.Fatalf("expected no mail for unknown email, got %d", len(fixture.mail.sent))
	}
}

func TestEmailVerificationFlow(t *testing.T) {
	fixture := newAuthFixture(t)
	fixture.register(t, "pat@example.com", "s3cret-pass")
	ctx := context.Background()

	token := fixture.tokens.tokenOfKind("email_verify")
	if token == "" {
		t.Fatal("expected a stored verification token")
	}

	if err := fixture.svc.ConfirmEmailVerification(ctx, token); err != nil {
		t.Fatalf("confirm verification: %v", err)
	}
	if fixture.users.byEmail["pat@example.com"].EmailVerifiedAt == nil {
		t.Fatal("expected email to be marked verified")
	}

	if err := fixture.svc.RequestEmailVerification(ctx, "pat@example.com"); err != nil {
		t.Fatalf("request for verified account: %v", err)
	}
	if len(fixture.mail.sent) != 1 {
		t.Fatalf("expected no extra mail for verified account, got %d", len(fixture.mail.sent))
	}
}
