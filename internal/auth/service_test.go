package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/mateovidal/routewave-backend/pkg/auth"
	"github.com/mateovidal/routewave-backend/pkg/auth/session"
	"github.com/mateovidal/routewave-backend/pkg/clock"
	"github.com/mateovidal/routewave-backend/pkg/config"
	"github.com/mateovidal/routewave-backend/pkg/db/models"
	"github.com/mateovidal/routewave-backend/pkg/enums"
	pkgerrors "github.com/mateovidal/routewave-backend/pkg/errors"
	"github.com/mateovidal/routewave-backend/pkg/security"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	created []*models.User
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
	for _, user := range seed {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (r *stubUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	r.created = append(r.created, user)
	return nil
}

func (r *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := r.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	generatedFor []string
	refreshToken string
	rotateErr    error
	newAccessID  string
	revoked      []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generatedFor = append(s.generatedFor, accessID)
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return s.newAccessID, s.refreshToken + "-rotated", nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "routewave",
	ExpirationMinutes: 30,
}

func buildTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(repo, sessions, testJWTConfig, config.PasswordConfig{}, clock.Fixed(time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestServiceRegisterCreatesUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := buildTestService(t, repo, &stubSessionManager{refreshToken: "refresh"})

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "  Vera Vendor ",
		Email:    "Vera@Example.COM",
		Password: "long-enough-password",
		Role:     enums.ActorRoleVendor,
		Phone:    " +1 555 0100 ",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if user.Email != "vera@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Name != "Vera Vendor" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.Role != enums.ActorRoleVendor {
		t.Fatalf("expected vendor role, got %s", user.Role)
	}
	if user.Phone == nil || *user.Phone != "+1 555 0100" {
		t.Fatalf("expected trimmed phone, got %v", user.Phone)
	}
	ok, err := security.VerifyPassword("long-enough-password", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one persisted user, got %d", len(repo.created))
	}
}

func TestServiceRegisterRejectsBadInput(t *testing.T) {
	repo := newStubUserRepo()
	svc := buildTestService(t, repo, &stubSessionManager{})

	valid := RegisterInput{
		Name:     "Valid Name",
		Email:    "valid@example.com",
		Password: "long-enough-password",
		Role:     enums.ActorRoleCustomer,
	}

	cases := map[string]func(in RegisterInput) RegisterInput{
		"blank name":     func(in RegisterInput) RegisterInput { in.Name = "   "; return in },
		"no at in email": func(in RegisterInput) RegisterInput { in.Email = "not-an-email"; return in },
		"short password": func(in RegisterInput) RegisterInput { in.Password = "short"; return in },
		"admin role":     func(in RegisterInput) RegisterInput { in.Role = enums.ActorRoleAdmin; return in },
		"unknown role":   func(in RegisterInput) RegisterInput { in.Role = "superuser"; return in },
	}
	for name, mutate := range cases {
		if _, err := svc.Register(context.Background(), mutate(valid)); err == nil {
			t.Errorf("%s: expected validation error", name)
		} else {
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Errorf("%s: expected validation error, got %v", name, err)
			}
		}
	}
	if len(repo.created) != 0 {
		t.Fatalf("rejected registrations must not persist users")
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "taken@example.com", Role: enums.ActorRoleVendor}
	svc := buildTestService(t, newStubUserRepo(existing), &stubSessionManager{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Second Comer",
		Email:    "Taken@example.com",
		Password: "long-enough-password",
		Role:     enums.ActorRoleCustomer,
	})
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestServiceLoginIssuesSessionTokens(t *testing.T) {
	password := "courier-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "courier@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.ActorRoleDelivery,
	}
	sessions := &stubSessionManager{refreshToken: "refresh-token"}
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	result, err := svc.Login(context.Background(), LoginInput{Email: "Courier@Example.com", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.ActorRoleDelivery {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if result.Tokens.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token from session manager, got %q", result.Tokens.RefreshToken)
	}
	if len(sessions.generatedFor) != 1 || sessions.generatedFor[0] != claims.ID {
		t.Fatalf("session must be keyed by the token jti, got %v vs %q", sessions.generatedFor, claims.ID)
	}
}

func TestServiceLoginFailuresAreUniform(t *testing.T) {
	password := "real-password"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "vendor@example.com",
		PasswordHash: mustHashPassword(t, password),
		Role:         enums.ActorRoleVendor,
	}
	sessions := &stubSessionManager{refreshToken: "refresh"}
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	cases := map[string]LoginInput{
		"unknown email":  {Email: "nobody@example.com", Password: password},
		"wrong password": {Email: user.Email, Password: "wrong-password"},
		"blank email":    {Email: "", Password: password},
		"blank password": {Email: user.Email, Password: ""},
	}
	for name, input := range cases {
		_, err := svc.Login(context.Background(), input)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Errorf("%s: expected unauthorized, got %v", name, err)
			continue
		}
		if typed.Message() != "invalid credentials" {
			t.Errorf("%s: failure message must not reveal the cause, got %q", name, typed.Message())
		}
	}
	if len(sessions.generatedFor) != 0 {
		t.Fatal("failed logins must not create sessions")
	}
}

func TestServiceRefreshRotatesAndMints(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "vendor@example.com", Role: enums.ActorRoleVendor}
	newAccessID := session.NewAccessID()
	sessions := &stubSessionManager{refreshToken: "refresh", newAccessID: newAccessID}
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	oldToken, err := pkgauth.MintAccessToken(testJWTConfig, time.Now().Add(-time.Hour), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint old token: %v", err)
	}

	result, err := svc.Refresh(context.Background(), RefreshInput{AccessToken: oldToken, RefreshToken: "refresh"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, result.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("parse new token: %v", err)
	}
	if claims.ID != newAccessID {
		t.Fatalf("new token must carry the rotated access id, got %q want %q", claims.ID, newAccessID)
	}
	if result.Tokens.RefreshToken != "refresh-rotated" {
		t.Fatalf("expected rotated refresh token, got %q", result.Tokens.RefreshToken)
	}
}

func TestServiceRefreshRejections(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: "vendor@example.com", Role: enums.ActorRoleVendor}
	token, err := pkgauth.MintAccessToken(testJWTConfig, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	t.Run("garbage access token", func(t *testing.T) {
		svc := buildTestService(t, newStubUserRepo(user), &stubSessionManager{})
		_, err := svc.Refresh(context.Background(), RefreshInput{AccessToken: "garbage", RefreshToken: "refresh"})
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		sessions := &stubSessionManager{rotateErr: session.ErrInvalidRefreshToken}
		svc := buildTestService(t, newStubUserRepo(user), sessions)
		_, err := svc.Refresh(context.Background(), RefreshInput{AccessToken: token, RefreshToken: "stale"})
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	})

	t.Run("user deleted since issue", func(t *testing.T) {
		sessions := &stubSessionManager{newAccessID: session.NewAccessID()}
		svc := buildTestService(t, newStubUserRepo(), sessions)
		_, err := svc.Refresh(context.Background(), RefreshInput{AccessToken: token, RefreshToken: "refresh"})
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	})
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessionManager{}
	svc := buildTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "access-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-123" {
		t.Fatalf("expected revoke of access-123, got %v", sessions.revoked)
	}
}
