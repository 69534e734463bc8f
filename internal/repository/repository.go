package repository

import (
	"context"
	"errors"
	"time"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/utils"
)

// ErrNoRowsAffected is returned by conditional updates whose guard did not match.
var ErrNoRowsAffected = errors.New("repository: no rows affected")

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalised email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindExistingEmails returns the subset of emails that already belong to a user
	FindExistingEmails(ctx context.Context, emails []string) ([]string, error)

	// ListByIDs loads users by ID
	ListByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// Update saves name, email, role, verification and team
	Update(ctx context.Context, user *models.User) error

	// AssignTeam moves users onto a team
	AssignTeam(ctx context.Context, userIDs []uint64, teamID uint64) error

	// CountByTeam counts the users on a team
	CountByTeam(ctx context.Context, teamID uint64) (int64, error)

	// Delete removes a user
	Delete(ctx context.Context, id uint64) error
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	// FindByOwnerID finds the organization an admin owns
	FindByOwnerID(ctx context.Context, ownerID uint64) (*models.Organization, error)

	// ExistsByName reports whether an organization already uses name
	ExistsByName(ctx context.Context, name string) (bool, error)

	// LoadTree loads an organization with departments, teams, users and objectives
	LoadTree(ctx context.Context, id uint64) (*models.Organization, error)

	// Delete removes an organization row
	Delete(ctx context.Context, id uint64) error
}

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	Create(ctx context.Context, dept *models.Department) error

	// FindByID finds a department within an organization, with its teams
	FindByID(ctx context.Context, id, organizationID uint64) (*models.Department, error)

	// List lists departments of an organization with pagination
	List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Department, int64, error)

	// Update renames a department
	Update(ctx context.Context, dept *models.Department) error

	Delete(ctx context.Context, id uint64) error
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds a team within an organization
	FindByID(ctx context.Context, id, organizationID uint64) (*models.Team, error)

	// LockForUpdate takes a row lock on the team for the rest of the
	// transaction. SQLite ignores it; its writers are already serialized.
	LockForUpdate(ctx context.Context, id uint64) error

	// FindWithMembers finds a team with department, users and objectives loaded
	FindWithMembers(ctx context.Context, id, organizationID uint64) (*models.Team, error)

	// List lists teams of an organization with pagination
	List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Team, int64, error)

	// Update renames a team and sets its department
	Update(ctx context.Context, team *models.Team) error

	// SetDepartment moves teams of an organization under a department; it
	// returns the number of teams moved
	SetDepartment(ctx context.Context, teamIDs []uint64, departmentID uint64, organizationID uint64) (int64, error)

	// DetachDepartment clears the department of every team in it
	DetachDepartment(ctx context.Context, departmentID uint64) error

	// CountByDepartment counts the teams of a department
	CountByDepartment(ctx context.Context, departmentID uint64) (int64, error)

	Delete(ctx context.Context, id uint64) error
}

// InviteRepository defines the interface for invite data access
type InviteRepository interface {
	// CreateBatch inserts invites
	CreateBatch(ctx context.Context, invites []models.Invite) error

	// FindByToken finds an invite by token, with team and department loaded
	FindByToken(ctx context.Context, token string) (*models.Invite, error)

	// FindPending returns unaccepted invites for a team that expire after now
	FindPending(ctx context.Context, emails []string, teamID uint64, now time.Time) ([]models.Invite, error)

	// MarkAccepted sets accepted_at only if it is still NULL; ErrNoRowsAffected otherwise
	MarkAccepted(ctx context.Context, id uint64, at time.Time) error

	// DeleteByTeam removes every invite of a team
	DeleteByTeam(ctx context.Context, teamID uint64) error
}

// OKRRepository defines the interface for objective and key result data access
type OKRRepository interface {
	// CreateObjective creates an objective together with its key results
	CreateObjective(ctx context.Context, objective *models.Objective) error

	// FindObjective finds an objective with key results and assignee
	FindObjective(ctx context.Context, id uint64) (*models.Objective, error)

	// ListByTeam lists the objectives of a team with pagination
	ListByTeam(ctx context.Context, teamID uint64, page utils.PaginationParams) ([]models.Objective, int64, error)

	// ListByUser lists the objectives assigned to a user
	ListByUser(ctx context.Context, userID uint64) ([]models.Objective, error)

	// UpdateObjective saves the editable objective columns
	UpdateObjective(ctx context.Context, objective *models.Objective) error

	// SetProgress writes the cached objective progress
	SetProgress(ctx context.Context, objectiveID uint64, progress int) error

	// DeleteObjective deletes an objective and its key results
	DeleteObjective(ctx context.Context, id uint64) error

	// CountByTeam counts the objectives of a team
	CountByTeam(ctx context.Context, teamID uint64) (int64, error)

	// UnassignUser clears the assignee of every objective assigned to a user
	UnassignUser(ctx context.Context, userID uint64) error

	CreateKeyResult(ctx context.Context, kr *models.KeyResult) error

	FindKeyResult(ctx context.Context, id uint64) (*models.KeyResult, error)

	// ListKeyResults lists the key results of an objective
	ListKeyResults(ctx context.Context, objectiveID uint64) ([]models.KeyResult, error)

	UpdateKeyResult(ctx context.Context, kr *models.KeyResult) error

	DeleteKeyResult(ctx context.Context, id uint64) error
}

// OTPRepository defines the interface for one-time code data access
type OTPRepository interface {
	Create(ctx context.Context, otp *models.OTP) error

	// FindActive returns unused codes for email expiring after now, newest first
	FindActive(ctx context.Context, email string, now time.Time) ([]models.OTP, error)

	// MarkUsed consumes a code only if it is still unused; ErrNoRowsAffected otherwise
	MarkUsed(ctx context.Context, id uint64) error
}
