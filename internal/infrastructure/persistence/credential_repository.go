package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements channel.CredentialRepository using GORM
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindByUserAndPlatform finds the credential for a (user, platform) pair
func (r *GormCredentialRepository) FindByUserAndPlatform(ctx context.Context, userID uuid.UUID, platform channel.PlatformCode) (*channel.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrCredentialNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUser finds all credentials of a user
func (r *GormCredentialRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*channel.Credential, error) {
	var credModels []models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("platform ASC").
		Find(&credModels).Error; err != nil {
		return nil, err
	}
	return toDomainCredentials(credModels), nil
}

// FindAllByPlatform finds every stored credential for a platform
func (r *GormCredentialRepository) FindAllByPlatform(ctx context.Context, platform channel.PlatformCode) ([]*channel.Credential, error) {
	var credModels []models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("created_at ASC").
		Find(&credModels).Error; err != nil {
		return nil, err
	}
	return toDomainCredentials(credModels), nil
}

// Save creates or updates a credential
func (r *GormCredentialRepository) Save(ctx context.Context, cred *channel.Credential) error {
	model := models.CredentialModelFromDomain(cred)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a credential, disconnecting the platform
func (r *GormCredentialRepository) Delete(ctx context.Context, userID uuid.UUID, platform channel.PlatformCode) error {
	result := r.db.WithContext(ctx).
		Delete(&models.CredentialModel{}, "user_id = ? AND platform = ?", userID, platform)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return channel.ErrCredentialNotFound
	}
	return nil
}

func toDomainCredentials(credModels []models.CredentialModel) []*channel.Credential {
	creds := make([]*channel.Credential, len(credModels))
	for i := range credModels {
		creds[i] = credModels[i].ToDomain()
	}
	return creds
}

// Ensure GormCredentialRepository implements channel.CredentialRepository
var _ channel.CredentialRepository = (*GormCredentialRepository)(nil)
