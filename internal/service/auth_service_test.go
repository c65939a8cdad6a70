package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/repository"
	"github.com/krishisakhi/backend/internal/security/auth"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryStore, *auth.TokenManager) {
	t.Helper()
	store := repository.NewMemoryStore()
	tm := auth.NewTokenManager("secret", "test", time.Hour)
	return NewAuthService(store.Farmers(), tm, nil, quietLogger()), store, tm
}

func register(t *testing.T, s *AuthService, phone, email string) *AuthResult {
	t.Helper()
	r, err := s.Register(context.Background(), RegisterInput{
		Name: "Asha", Phone: phone, Email: email, Password: "secret1", Location: "Thrissur", Language: "ml",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, tm := newAuthService(t)
	ctx := context.Background()

	r := register(t, s, "+911111111111", "a@x.com")
	if r.FarmerID == 0 || r.Token == "" {
		t.Fatalf("expected farmer id and token")
	}
	if r.Language != domain.LanguageMalayalam {
		t.Fatalf("expected ml, got %q", r.Language)
	}
	if id, err := tm.Verify(r.Token); err != nil || id != r.FarmerID {
		t.Fatalf("token does not verify to the farmer: id=%d err=%v", id, err)
	}

	lr, err := s.Login(ctx, "+911111111111", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.FarmerID != r.FarmerID || lr.TokenType != "Bearer" {
		t.Fatalf("unexpected login result: %+v", lr)
	}
}

func TestRegisterDuplicateIdentity(t *testing.T) {
	s, _, _ := newAuthService(t)
	register(t, s, "+911111111111", "a@x.com")

	cases := map[string]RegisterInput{
		"same phone": {Name: "B", Phone: "+911111111111", Email: "b@x.com", Password: "secret1"},
		"same email": {Name: "B", Phone: "+912222222222", Email: "A@X.com", Password: "secret1"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrDuplicateIdentity) {
				t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	s, _, _ := newAuthService(t)

	cases := map[string]RegisterInput{
		"missing name":   {Phone: "+91", Email: "a@x.com", Password: "secret1"},
		"missing phone":  {Name: "A", Email: "a@x.com", Password: "secret1"},
		"bad email":      {Name: "A", Phone: "+91", Email: "ax.com", Password: "secret1"},
		"short password": {Name: "A", Phone: "+91", Email: "a@x.com", Password: "12345"},
		"long password":  {Name: "A", Phone: "+91", Email: "a@x.com", Password: strings.Repeat("p", 80)},
		"bad language":   {Name: "A", Phone: "+91", Email: "a@x.com", Password: "secret1", Language: "hi"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestLoginIsStrict(t *testing.T) {
	s, _, _ := newAuthService(t)
	register(t, s, "+911111111111", "a@x.com")
	ctx := context.Background()

	if _, err := s.Login(ctx, "+911111111111", "wrong-password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, "+919999999999", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown phone, got %v", err)
	}
	if _, err := s.Login(ctx, "+911111111111", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for empty password, got %v", err)
	}
}

func TestPasswordIsNotStoredInClear(t *testing.T) {
	s, store, _ := newAuthService(t)
	r := register(t, s, "+911111111111", "a@x.com")

	f, err := store.Farmers().GetByID(context.Background(), r.FarmerID)
	if err != nil {
		t.Fatalf("get farmer: %v", err)
	}
	if f.PasswordHash == "secret1" || !auth.CheckPassword(f.PasswordHash, "secret1") {
		t.Fatalf("expected a bcrypt hash of the password")
	}
}

func TestChangePassword(t *testing.T) {
	s, _, _ := newAuthService(t)
	ctx := context.Background()
	reg := register(t, s, "+911111111111", "a@x.com")

	if err := s.ChangePassword(ctx, reg.FarmerID, "bad", "NewPass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrong old password error, got %v", err)
	}
	if err := s.ChangePassword(ctx, reg.FarmerID, "secret1", "123"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := s.ChangePassword(ctx, reg.FarmerID, "secret1", "NewPass123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := s.Login(ctx, "+911111111111", "secret1"); err == nil {
		t.Fatalf("expected old password to fail after change")
	}
	if _, err := s.Login(ctx, "+911111111111", "NewPass123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUpdateLanguage(t *testing.T) {
	s, _, _ := newAuthService(t)
	ctx := context.Background()
	reg := register(t, s, "+911111111111", "a@x.com")

	if _, err := s.UpdateLanguage(ctx, reg.FarmerID, "fr"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.UpdateLanguage(ctx, reg.FarmerID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty language, got %v", err)
	}
	lang, err := s.UpdateLanguage(ctx, reg.FarmerID, "en")
	if err != nil || lang != domain.LanguageEnglish {
		t.Fatalf("update language: %v %v", lang, err)
	}
	f, err := s.Profile(ctx, reg.FarmerID)
	if err != nil || f.Language != domain.LanguageEnglish {
		t.Fatalf("profile after update: %+v %v", f, err)
	}
}

func TestDemoLoginReusesFarmer(t *testing.T) {
	s, _, _ := newAuthService(t)
	ctx := context.Background()

	first, err := s.DemoLogin(ctx)
	if err != nil {
		t.Fatalf("demo login: %v", err)
	}
	second, err := s.DemoLogin(ctx)
	if err != nil {
		t.Fatalf("second demo login: %v", err)
	}
	if first.FarmerID != second.FarmerID {
		t.Fatalf("expected the same demo farmer, got %d and %d", first.FarmerID, second.FarmerID)
	}
}

func TestDemoLoginEmailTakenByAnotherFarmer(t *testing.T) {
	s, _, _ := newAuthService(t)
	register(t, s, "+919111111111", demoEmail)

	_, err := s.DemoLogin(context.Background())
	if !errors.Is(err, domain.ErrDuplicateIdentity) {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}
