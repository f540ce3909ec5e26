package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orbitfit/mealplan/internal/domain/client"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
)

// ClientRepository implements the client profile repository using GORM
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) outbound.ClientRepository {
	return &ClientRepository{db: db}
}

// Create stores a client profile
func (r *ClientRepository) Create(ctx context.Context, profile *client.Profile) error {
	if profile.ClientID == uuid.Nil {
		profile.ClientID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(ProfileToModel(profile)).Error; err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// FindProfile finds a client's allergen and diet profile
func (r *ClientRepository) FindProfile(ctx context.Context, clientID uuid.UUID) (*client.Profile, error) {
	var model ClientModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", clientID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("load client: %w", result.Error)
	}

	return ModelToProfile(&model), nil
}
