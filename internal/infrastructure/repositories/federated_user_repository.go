package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/you/emrsvc/domain"
	"gorm.io/gorm"
)

// FederatedUserRepositoryImpl implements domain.FederatedUserRepository using GORM
type FederatedUserRepositoryImpl struct {
	db *gorm.DB
}

// DBFederatedUser is the database model for identities of the federated context
type DBFederatedUser struct {
	UID             string `gorm:"primaryKey;size:36"`
	AuthProvider    string `gorm:"size:20;not null;uniqueIndex:idx_provider_subject"`
	ProviderSubject string `gorm:"size:255;not null;uniqueIndex:idx_provider_subject"`
	Email           string `gorm:"index;size:120"`
	DisplayName     string `gorm:"size:120"`
	PhoneNumber     string `gorm:"index;size:20"`
	PhotoURL        string `gorm:"size:512"`
	EmailVerified   bool
	CreatedAt       time.Time
	LastLoginAt     time.Time
}

// TableName returns the table name for GORM
func (DBFederatedUser) TableName() string {
	return "federated_users"
}

// NewFederatedUserRepository creates a new federated user repository
func NewFederatedUserRepository(db *gorm.DB) domain.FederatedUserRepository {
	return &FederatedUserRepositoryImpl{db: db}
}

// Upsert implements domain.FederatedUserRepository. Empty profile fields
// never overwrite stored ones.
func (r *FederatedUserRepositoryImpl) Upsert(ctx context.Context, u *domain.FederatedUser) error {
	now := time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DBFederatedUser
		err := tx.Where("auth_provider = ? AND provider_subject = ?", u.AuthProvider, u.ProviderSubject).
			First(&row).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = DBFederatedUser{
				UID:             uuid.NewString(),
				AuthProvider:    u.AuthProvider,
				ProviderSubject: u.ProviderSubject,
				CreatedAt:       now,
			}
		case err != nil:
			return err
		}

		mergeString(&row.Email, u.Email)
		mergeString(&row.DisplayName, u.DisplayName)
		mergeString(&row.PhoneNumber, u.PhoneNumber)
		mergeString(&row.PhotoURL, u.PhotoURL)
		row.EmailVerified = row.EmailVerified || u.EmailVerified
		row.LastLoginAt = now

		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		*u = *federatedToDomain(&row)
		return nil
	})
}

// FindByUID implements domain.FederatedUserRepository
func (r *FederatedUserRepositoryImpl) FindByUID(ctx context.Context, uid string) (*domain.FederatedUser, error) {
	var row DBFederatedUser
	err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return federatedToDomain(&row), nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func federatedToDomain(row *DBFederatedUser) *domain.FederatedUser {
	return &domain.FederatedUser{
		UID:             row.UID,
		Email:           row.Email,
		DisplayName:     row.DisplayName,
		PhoneNumber:     row.PhoneNumber,
		PhotoURL:        row.PhotoURL,
		EmailVerified:   row.EmailVerified,
		AuthProvider:    row.AuthProvider,
		ProviderSubject: row.ProviderSubject,
		CreatedAt:       row.CreatedAt,
		LastLoginAt:     row.LastLoginAt,
	}
}
