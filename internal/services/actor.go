package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID         uint64
	Email          string
	Role           models.Role
	TeamID         *uint64
	OrganizationID *uint64
}

// IsAdmin reports whether the actor has the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// requireOrgAdmin returns the organization an admin actor acts on.
func (a Actor) requireOrgAdmin() (uint64, error) {
	if !a.IsAdmin() {
		return 0, ErrAdminOnly
	}
	if a.OrganizationID == nil {
		return 0, ErrNoOrg
	}
	return *a.OrganizationID, nil
}

// resolveActor loads a user and works out which organization they act in:
// admins act in the organization they own, everyone else in their team's.
func resolveActor(ctx context.Context, store *repository.Store, userID uint64) (Actor, error) {
	user, err := store.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Actor{}, ErrUnauthorized
		}
		return Actor{}, internalError("failed to load user", err)
	}

	actor := Actor{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		TeamID: user.TeamID,
	}

	if user.Role == models.RoleAdmin {
		org, err := store.Organizations.FindByOwnerID(ctx, user.ID)
		switch {
		case err == nil:
			actor.OrganizationID = &org.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return Actor{}, internalError("failed to load organization", fmt.Errorf("owner %d: %w", user.ID, err))
		}
	}
	if actor.OrganizationID == nil && user.Team != nil {
		orgID := user.Team.OrganizationID
		actor.OrganizationID = &orgID
	}

	return actor, nil
}
