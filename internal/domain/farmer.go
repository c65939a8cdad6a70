package domain

import (
	"context"
	"time"
)

// Language is a farmer's preferred display language.
type Language string

const (
	LanguageEnglish   Language = "en"
	LanguageMalayalam Language = "ml"
)

// ParseLanguage accepts "en" or "ml". An empty value defaults to English.
func ParseLanguage(s string) (Language, bool) {
	switch Language(s) {
	case "":
		return LanguageEnglish, true
	case LanguageEnglish, LanguageMalayalam:
		return Language(s), true
	default:
		return "", false
	}
}

// Farmer is a registered end user. Phone and Email are unique across farmers.
type Farmer struct {
	ID           int64
	Name         string
	Phone        string
	Email        string
	PasswordHash string // bcrypt, never returned in API
	Location     string
	Language     Language
	CreatedAt    time.Time
}

// FarmerRepository defines data access for farmers
type FarmerRepository interface {
	// Create inserts the farmer and fills in ID and CreatedAt. A phone or email
	// collision returns ErrDuplicateIdentity.
	Create(ctx context.Context, farmer *Farmer) error
	GetByID(ctx context.Context, id int64) (*Farmer, error)
	GetByPhone(ctx context.Context, phone string) (*Farmer, error)
	// ExistsByPhoneOrEmail reports whether either identifier is already taken.
	ExistsByPhoneOrEmail(ctx context.Context, phone, email string) (bool, error)
	UpdateLanguage(ctx context.Context, id int64, lang Language) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}
