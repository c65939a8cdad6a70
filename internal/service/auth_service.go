package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/observability/metrics"
	"github.com/krishisakhi/backend/internal/security/audit"
	"github.com/krishisakhi/backend/internal/security/auth"
)

// Demo account served by DemoLogin.
const (
	DemoPhone    = "+919876543210"
	demoName     = "Demo Farmer"
	demoEmail    = "demo@krishisakhi.app"
	demoLocation = "Thrissur, Kerala"
)

// AuthService handles registration, credential checks and profile changes
type AuthService struct {
	farmers  domain.FarmerRepository
	tokens   *auth.TokenManager
	auditLog *audit.Logger
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	farmers domain.FarmerRepository,
	tokens *auth.TokenManager,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if auditLog == nil {
		auditLog = audit.NewLogger(logger)
	}

	return &AuthService{
		farmers:  farmers,
		tokens:   tokens,
		auditLog: auditLog,
		logger:   logger,
	}
}

// RegisterInput is the registration request
type RegisterInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Location string
	Language string
}

// AuthResult is returned by register and every login flavour
type AuthResult struct {
	FarmerID  int64           `json:"farmerId"`
	Name      string          `json:"name"`
	Language  domain.Language `json:"language"`
	Token     string          `json:"token"`
	TokenType string          `json:"tokenType"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

// Register creates a new farmer and signs them in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Location = strings.TrimSpace(in.Location)

	switch {
	case in.Name == "":
		return nil, validationError("name is required")
	case in.Phone == "":
		return nil, validationError("phone is required")
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return nil, validationError("a valid email is required")
	case len(in.Password) < auth.MinPasswordLength:
		return nil, validationError("password must be at least %d characters", auth.MinPasswordLength)
	}
	lang, ok := domain.ParseLanguage(in.Language)
	if !ok {
		return nil, validationError("language must be en or ml")
	}

	exists, err := s.farmers.ExistsByPhoneOrEmail(ctx, in.Phone, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}
	if exists {
		metrics.ObserveAuth("register", "duplicate")
		return nil, domain.ErrDuplicateIdentity
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if auth.IsHashTooLong(err) {
			return nil, validationError("password is too long")
		}
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	farmer := &domain.Farmer{
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		PasswordHash: hash,
		Location:     in.Location,
		Language:     lang,
	}
	if err := s.farmers.Create(ctx, farmer); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			metrics.ObserveAuth("register", "duplicate")
			return nil, err
		}
		return nil, fmt.Errorf("failed to register farmer: %w", err)
	}

	s.logger.Info("farmer registered", slog.Int64("farmer_id", farmer.ID))
	metrics.ObserveAuth("register", "success")
	s.auditLog.LogRecordCreated(ctx, farmer.ID, "farmer", farmer.ID)
	return s.result(farmer)
}

// Verify checks a phone/password pair and returns the farmer. Unknown phones
// and wrong passwords both fail with domain.ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, phone, password string) (*domain.Farmer, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	farmer, err := s.farmers.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			auth.BurnComparison(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load farmer: %w", err)
	}

	if !auth.CheckPassword(farmer.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return farmer, nil
}

// Login authenticates a farmer and returns a bearer token
func (s *AuthService) Login(ctx context.Context, phone, password string) (*AuthResult, error) {
	farmer, err := s.Verify(ctx, phone, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.ObserveAuth("login", "invalid")
			s.auditLog.LogLogin(ctx, 0, "denied", "invalid credentials")
		}
		return nil, err
	}

	s.logger.Info("farmer logged in", slog.Int64("farmer_id", farmer.ID))
	metrics.ObserveAuth("login", "success")
	s.auditLog.LogLogin(ctx, farmer.ID, "success", "")
	return s.result(farmer)
}

// DemoLogin signs in the shared demo farmer, creating it on first use
func (s *AuthService) DemoLogin(ctx context.Context) (*AuthResult, error) {
	farmer, err := s.farmers.GetByPhone(ctx, DemoPhone)
	if errors.Is(err, domain.ErrNotFound) {
		hash, hashErr := auth.HashPassword(uuid.NewString())
		if hashErr != nil {
			return nil, hashErr
		}
		farmer = &domain.Farmer{
			Name:         demoName,
			Phone:        DemoPhone,
			Email:        demoEmail,
			PasswordHash: hash,
			Location:     demoLocation,
			Language:     domain.LanguageEnglish,
		}
		err = s.farmers.Create(ctx, farmer)
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			// Either a concurrent demo login won the insert or the demo
			// email belongs to another account.
			farmer, err = s.farmers.GetByPhone(ctx, DemoPhone)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: demo account email %s is already registered", domain.ErrDuplicateIdentity, demoEmail)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load demo farmer: %w", err)
	}

	metrics.ObserveAuth("demo_login", "success")
	s.auditLog.LogLogin(ctx, farmer.ID, "success", "demo")
	return s.result(farmer)
}

// Profile returns the farmer behind a session
func (s *AuthService) Profile(ctx context.Context, farmerID int64) (*domain.Farmer, error) {
	return s.farmers.GetByID(ctx, farmerID)
}

// UpdateLanguage changes the farmer's preferred language
func (s *AuthService) UpdateLanguage(ctx context.Context, farmerID int64, language string) (domain.Language, error) {
	lang, ok := domain.ParseLanguage(strings.TrimSpace(language))
	if !ok || language == "" {
		return "", validationError("language must be en or ml")
	}
	if err := s.farmers.UpdateLanguage(ctx, farmerID, lang); err != nil {
		return "", err
	}
	return lang, nil
}

// ChangePassword replaces the farmer's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, farmerID int64, oldPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return validationError("new password must be at least %d characters", auth.MinPasswordLength)
	}

	farmer, err := s.farmers.GetByID(ctx, farmerID)
	if err != nil {
		return err
	}

	if !auth.CheckPassword(farmer.PasswordHash, oldPassword) {
		return domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		if auth.IsHashTooLong(err) {
			return validationError("password is too long")
		}
		return err
	}

	if err := s.farmers.UpdatePasswordHash(ctx, farmerID, hash); err != nil {
		s.logger.Error("failed to update farmer password", slog.String("error", err.Error()))
		return fmt.Errorf("failed to change password: %w", err)
	}

	s.logger.Info("farmer changed password", slog.Int64("farmer_id", farmerID))
	return nil
}

func (s *AuthService) result(farmer *domain.Farmer) (*AuthResult, error) {
	token, err := s.tokens.Issue(farmer.ID)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{
		FarmerID:  farmer.ID,
		Name:      farmer.Name,
		Language:  farmer.Language,
		Token:     token.Value,
		TokenType: "Bearer",
		ExpiresAt: token.ExpiresAt,
	}, nil
}
