package services

import (
	"context"
	"errors"
	"strings"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeamService manages teams and who belongs to them.
type TeamService struct {
	store   *repository.Store
	invites *InviteService
	log     *zap.Logger
}

// NewTeamService creates a new TeamService.
func NewTeamService(store *repository.Store, invites *InviteService, log *zap.Logger) *TeamService {
	return &TeamService{
		store:   store,
		invites: invites,
		log:     log,
	}
}

// CreateTeamInput represents a new team. Existing users among Emails join
// the team directly; the rest are invited.
type CreateTeamInput struct {
	Name         string
	DepartmentID *uint64
	LeaderID     *uint64
	Emails       []string
}

// UpdateTeamInput is a partial team update.
type UpdateTeamInput struct {
	Name            *string
	DepartmentID    *uint64
	ClearDepartment bool
	LeaderID        *uint64
}

// CreateTeamResult is the new team plus what happened to each email.
type CreateTeamResult struct {
	Team        *models.Team
	Attached    []string
	Invites     *IssueResult
	InviteError string
}

// Create creates a team in the actor's organization.
func (s *TeamService) Create(ctx context.Context, actor Actor, input CreateTeamInput) (*CreateTeamResult, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validationError("Team name cannot be empty")
	}

	var emails []string
	if len(input.Emails) > 0 {
		if emails, err = normalizeEmails(input.Emails); err != nil {
			return nil, err
		}
	}

	team := &models.Team{
		Name:           name,
		OrganizationID: orgID,
		DepartmentID:   input.DepartmentID,
	}
	result := &CreateTeamResult{}
	var toInvite []string

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if input.DepartmentID != nil {
			if _, err := findDepartment(ctx, tx, *input.DepartmentID, orgID); err != nil {
				return err
			}
		}
		if err := tx.Teams.Create(ctx, team); err != nil {
			return internalError("failed to create team", err)
		}

		if input.LeaderID != nil {
			if err := promoteLeader(ctx, tx, *input.LeaderID, team.ID, orgID); err != nil {
				return err
			}
		}

		var attachIDs []uint64
		for _, email := range emails {
			user, err := tx.Users.FindByEmail(ctx, email)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				toInvite = append(toInvite, email)
				continue
			}
			if err != nil {
				return internalError("failed to find user", err)
			}
			if err := checkMovable(ctx, tx, user, orgID); err != nil {
				return err
			}
			attachIDs = append(attachIDs, user.ID)
			result.Attached = append(result.Attached, email)
		}
		if err := tx.Users.AssignTeam(ctx, attachIDs, team.ID); err != nil {
			return internalError("failed to add users to team", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Team, err = s.store.Teams.FindWithMembers(ctx, team.ID, orgID)
	if err != nil {
		return nil, internalError("failed to reload team", err)
	}

	if len(toInvite) > 0 {
		issued, err := s.invites.IssueForTeam(ctx, result.Team, toInvite, models.RoleMember, "")
		if err != nil {
			s.log.Warn("team created but invites failed", zap.Uint64("team_id", team.ID), zap.Error(err))
			result.InviteError = errorMessage(err)
		} else {
			result.Invites = issued
		}
	}

	return result, nil
}

// List lists teams. Admins see every team of their organization; others
// see only their own team.
func (s *TeamService) List(ctx context.Context, actor Actor, page utils.PaginationParams) ([]models.Team, int64, error) {
	if actor.OrganizationID == nil {
		return []models.Team{}, 0, nil
	}

	if !actor.IsAdmin() {
		if actor.TeamID == nil {
			return []models.Team{}, 0, nil
		}
		team, err := s.store.Teams.FindByID(ctx, *actor.TeamID, *actor.OrganizationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.Team{}, 0, nil
			}
			return nil, 0, internalError("failed to find team", err)
		}
		return []models.Team{*team}, 1, nil
	}

	teams, total, err := s.store.Teams.List(ctx, *actor.OrganizationID, page)
	if err != nil {
		return nil, 0, internalError("failed to list teams", err)
	}
	return teams, total, nil
}

// Get loads a team with its users and objectives.
func (s *TeamService) Get(ctx context.Context, actor Actor, id uint64) (*models.Team, error) {
	if _, err := authorizeTeam(ctx, s.store, actor, id); err != nil {
		return nil, err
	}
	team, err := s.store.Teams.FindWithMembers(ctx, id, *actor.OrganizationID)
	if err != nil {
		return nil, internalError("failed to load team", err)
	}
	return team, nil
}

// Update renames a team, moves it between departments or sets its leader.
func (s *TeamService) Update(ctx context.Context, actor Actor, id uint64, input UpdateTeamInput) (*models.Team, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		team, err := findTeam(ctx, tx, id, orgID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return validationError("Team name cannot be empty")
			}
			team.Name = name
		}
		switch {
		case input.ClearDepartment:
			team.DepartmentID = nil
		case input.DepartmentID != nil:
			if _, err := findDepartment(ctx, tx, *input.DepartmentID, orgID); err != nil {
				return err
			}
			team.DepartmentID = input.DepartmentID
		}

		if err := tx.Teams.Update(ctx, team); err != nil {
			return internalError("failed to update team", err)
		}

		if input.LeaderID != nil {
			return promoteLeader(ctx, tx, *input.LeaderID, team.ID, orgID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.Teams.FindWithMembers(ctx, id, orgID)
}

// Delete removes a team that has no users and no objectives. Its invites go with it.
func (s *TeamService) Delete(ctx context.Context, actor Actor, id uint64) error {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := findTeam(ctx, tx, id, orgID); err != nil {
			return err
		}

		users, err := tx.Users.CountByTeam(ctx, id)
		if err != nil {
			return internalError("failed to count users", err)
		}
		objectives, err := tx.OKRs.CountByTeam(ctx, id)
		if err != nil {
			return internalError("failed to count objectives", err)
		}
		if users > 0 || objectives > 0 {
			return &Error{
				Kind:    ErrTeamNotEmpty.Kind,
				Message: ErrTeamNotEmpty.Message,
				Details: map[string]interface{}{"users": users, "objectives": objectives},
			}
		}

		if err := tx.Invites.DeleteByTeam(ctx, id); err != nil {
			return internalError("failed to delete invites", err)
		}
		if err := tx.Teams.Delete(ctx, id); err != nil {
			return internalError("failed to delete team", err)
		}
		return nil
	})
}

func findTeam(ctx context.Context, store *repository.Store, id, orgID uint64) (*models.Team, error) {
	team, err := store.Teams.FindByID(ctx, id, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, internalError("failed to find team", err)
	}
	return team, nil
}

// promoteLeader moves a user onto the team and makes members managers.
func promoteLeader(ctx context.Context, tx *repository.Store, userID, teamID, orgID uint64) error {
	user, err := tx.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return internalError("failed to find leader", err)
	}
	if err := checkMovable(ctx, tx, user, orgID); err != nil {
		return err
	}

	user.TeamID = &teamID
	if user.Role == models.RoleMember {
		user.Role = models.RoleManager
	}
	if err := tx.Users.Update(ctx, user); err != nil {
		return internalError("failed to update leader", err)
	}
	return nil
}

// checkMovable rejects admins and users who belong to another organization.
func checkMovable(ctx context.Context, tx *repository.Store, user *models.User, orgID uint64) error {
	if user.Role == models.RoleAdmin {
		return withDetail(ErrUserExists, "email", user.Email)
	}
	if user.TeamID == nil {
		return nil
	}
	if _, err := tx.Teams.FindByID(ctx, *user.TeamID, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return withDetail(ErrUserExists, "email", user.Email)
		}
		return internalError("failed to find current team", err)
	}
	return nil
}

func errorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
