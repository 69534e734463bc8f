package services

import (
	"context"
	"errors"
	"strings"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/utils"
	"gorm.io/gorm"
)

// DepartmentService manages the departments of an organization.
type DepartmentService struct {
	store *repository.Store
}

// NewDepartmentService creates a new DepartmentService.
func NewDepartmentService(store *repository.Store) *DepartmentService {
	return &DepartmentService{store: store}
}

// CreateDepartmentInput represents a new department and the teams it claims.
type CreateDepartmentInput struct {
	Name    string
	TeamIDs []uint64
}

// UpdateDepartmentInput is a partial update. A non-nil TeamIDs replaces the
// department's team set.
type UpdateDepartmentInput struct {
	Name    *string
	TeamIDs *[]uint64
}

// Create creates a department and moves the given teams under it.
func (s *DepartmentService) Create(ctx context.Context, actor Actor, input CreateDepartmentInput) (*models.Department, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("Department name cannot be empty")
	}

	dept := &models.Department{Name: name, OrganizationID: orgID}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Departments.Create(ctx, dept); err != nil {
			return internalError("failed to create department", err)
		}
		return claimTeams(ctx, tx, dept.ID, orgID, input.TeamIDs)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, dept.ID)
}

// List lists the departments of the actor's organization.
func (s *DepartmentService) List(ctx context.Context, actor Actor, page utils.PaginationParams) ([]models.Department, int64, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, 0, err
	}
	depts, total, err := s.store.Departments.List(ctx, orgID, page)
	if err != nil {
		return nil, 0, internalError("failed to list departments", err)
	}
	return depts, total, nil
}

// Get loads one department with its teams.
func (s *DepartmentService) Get(ctx context.Context, actor Actor, id uint64) (*models.Department, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, err
	}
	return findDepartment(ctx, s.store, id, orgID)
}

// Update renames a department or replaces its teams.
func (s *DepartmentService) Update(ctx context.Context, actor Actor, id uint64, input UpdateDepartmentInput) (*models.Department, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		dept, err := findDepartment(ctx, tx, id, orgID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return validationError("Department name cannot be empty")
			}
			dept.Name = name
			if err := tx.Departments.Update(ctx, dept); err != nil {
				return internalError("failed to update department", err)
			}
		}

		if input.TeamIDs != nil {
			if err := tx.Teams.DetachDepartment(ctx, dept.ID); err != nil {
				return internalError("failed to detach teams", err)
			}
			return claimTeams(ctx, tx, dept.ID, orgID, *input.TeamIDs)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, id)
}

// Delete removes an empty department.
func (s *DepartmentService) Delete(ctx context.Context, actor Actor, id uint64) error {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := findDepartment(ctx, tx, id, orgID); err != nil {
			return err
		}
		count, err := tx.Teams.CountByDepartment(ctx, id)
		if err != nil {
			return internalError("failed to count teams", err)
		}
		if count > 0 {
			return withDetail(ErrDepartmentNotEmpty, "teams", count)
		}
		if err := tx.Departments.Delete(ctx, id); err != nil {
			return internalError("failed to delete department", err)
		}
		return nil
	})
}

func findDepartment(ctx context.Context, store *repository.Store, id, orgID uint64) (*models.Department, error) {
	dept, err := store.Departments.FindByID(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		return nil, internalError("failed to find department", err)
	}
	return dept, nil
}

// claimTeams moves teams under a department; every id must be a team of the organization.
func claimTeams(ctx context.Context, tx *repository.Store, deptID, orgID uint64, teamIDs []uint64) error {
	ids := uniqueIDs(teamIDs)
	if len(ids) == 0 {
		return nil
	}
	moved, err := tx.Teams.SetDepartment(ctx, ids, deptID, orgID)
	if err != nil {
		return internalError("failed to assign teams", err)
	}
	if moved != int64(len(ids)) {
		return ErrTeamNotFound
	}
	return nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
