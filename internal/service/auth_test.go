package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/service"

	"go.uber.org/zap"
)

func newAuthService(store *stubAuthStore) *service.AuthService {
	return service.NewAuthService(store, "test-secret", time.Hour, 7*24*time.Hour, zap.NewNop())
}

func TestRegister_Success(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	tokens, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "Jamie@Example.com",
		Password: "correct-horse",
		FullName: "Jamie Doe",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if tokens.User.Role != domain.RoleCustomer {
		t.Errorf("expected default role customer, got %s", tokens.User.Role)
	}
	// Email is normalized to lower case.
	if store.byEmail["jamie@example.com"] == nil {
		t.Error("expected user stored under lowercased email")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	req := &domain.RegisterRequest{Email: "dup@example.com", Password: "correct-horse", FullName: "Dup"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if conflict.TaxonomyCode != "EMAIL_EXISTS" {
		t.Errorf("expected EMAIL_EXISTS, got %s", conflict.TaxonomyCode)
	}
}

func TestRegister_RejectsAdminRole(t *testing.T) {
	svc := newAuthService(newStubAuthStore())

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "boss@example.com",
		Password: "correct-horse",
		FullName: "Boss",
		Role:     domain.RoleAdmin,
	})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newAuthService(newStubAuthStore())

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:    "short@example.com",
		Password: "short",
		FullName: "Short",
	})
	var v *domain.ErrValidation
	if !errors.As(err, &v) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "login@example.com", Password: "correct-horse", FullName: "Login",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tokens, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "login@example.com", Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if tokens.AccessToken == "" {
		t.Error("expected access token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	tokens, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "wrong@example.com", Password: "correct-horse", FullName: "Wrong",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err = svc.Login(context.Background(), &domain.LoginRequest{
		Email: "wrong@example.com", Password: "not-the-password",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if store.creds[tokens.User.ID].FailedAttempts != 1 {
		t.Errorf("expected 1 failed attempt recorded, got %d", store.creds[tokens.User.ID].FailedAttempts)
	}
}

func TestLogin_LocksAfterMaxAttempts(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	if _, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "locked@example.com", Password: "correct-horse", FullName: "Locked",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		_, _ = svc.Login(context.Background(), &domain.LoginRequest{
			Email: "locked@example.com", Password: "not-the-password",
		})
	}

	// Even the correct password is rejected while locked.
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email: "locked@example.com", Password: "correct-horse",
	})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized for locked account, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	tokens, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "rotate@example.com", Password: "correct-horse", FullName: "Rotate",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	fresh, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}
	if fresh.RefreshToken == tokens.RefreshToken {
		t.Error("expected a new refresh token after rotation")
	}

	// The presented token is single-use.
	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: tokens.RefreshToken})
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized for reused token, got %v", err)
	}
}

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	svc := newAuthService(newStubAuthStore())

	tokens, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "claims@example.com", Password: "correct-horse", FullName: "Claims",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("expected token to validate, got %v", err)
	}
	if claims.Sub != tokens.User.ID {
		t.Errorf("expected sub %s, got %s", tokens.User.ID, claims.Sub)
	}
	if claims.Role != string(domain.RoleCustomer) {
		t.Errorf("expected role customer, got %s", claims.Role)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	issuer := newAuthService(newStubAuthStore())
	verifier := service.NewAuthService(newStubAuthStore(), "other-secret", time.Hour, time.Hour, zap.NewNop())

	tokens, err := issuer.Register(context.Background(), &domain.RegisterRequest{
		Email: "forged@example.com", Password: "correct-horse", FullName: "Forged",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err = verifier.ValidateAccessToken(tokens.AccessToken)
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLogout_RevokesRefreshTokens(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	tokens, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "bye@example.com", Password: "correct-horse", FullName: "Bye",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.Logout(context.Background(), tokens.User.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	_, err = svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: tokens.RefreshToken})
	if err == nil {
		t.Fatal("expected refresh to fail after logout")
	}
}

func TestSetAvatar_UpdatesProfile(t *testing.T) {
	store := newStubAuthStore()
	svc := newAuthService(store)

	tokens, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email: "ava@example.com", Password: "correct-horse", FullName: "Ava",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	profile, err := svc.SetAvatar(context.Background(), tokens.User.ID, "/uploads/avatars/ava.png")
	if err != nil {
		t.Fatalf("set avatar failed: %v", err)
	}
	if profile.AvatarURL != "/uploads/avatars/ava.png" {
		t.Errorf("expected avatar url on returned profile, got %q", profile.AvatarURL)
	}
	if got := store.profiles[tokens.User.ID].AvatarURL; got != "/uploads/avatars/ava.png" {
		t.Errorf("expected avatar url persisted, got %q", got)
	}
}
