package services

import (
	"context"
	"errors"
	"strings"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"gorm.io/gorm"
)

// OrganizationService provides business logic for the tenant root.
type OrganizationService struct {
	store *repository.Store
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(store *repository.Store) *OrganizationService {
	return &OrganizationService{store: store}
}

// Create creates the admin's organization. Names are unique across tenants
// and every admin owns at most one organization.
func (s *OrganizationService) Create(ctx context.Context, actor Actor, name string) (*models.Organization, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("Organization name cannot be empty")
	}

	org := &models.Organization{
		Name:    name,
		OwnerID: actor.UserID,
	}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		taken, err := tx.Organizations.ExistsByName(ctx, name)
		if err != nil {
			return internalError("failed to check organization name", err)
		}
		if taken {
			return ErrOrganizationExists
		}

		if _, err := tx.Organizations.FindByOwnerID(ctx, actor.UserID); err == nil {
			return ErrAlreadyHasOrg
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internalError("failed to check organization owner", err)
		}

		if err := tx.Organizations.Create(ctx, org); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return wrap(ErrOrganizationExists, err)
			}
			return internalError("failed to create organization", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Get loads the actor's organization with its whole hierarchy.
func (s *OrganizationService) Get(ctx context.Context, actor Actor) (*models.Organization, error) {
	if actor.OrganizationID == nil {
		return nil, ErrOrganizationNotFound
	}
	org, err := s.store.Organizations.LoadTree(ctx, *actor.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, internalError("failed to load organization", err)
	}
	return org, nil
}
