package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/metrics"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InviteService issues, validates and accepts team invites.
type InviteService struct {
	store       *repository.Store
	dispatcher  *mailer.Dispatcher
	frontendURL string
	log         *zap.Logger
	now         func() time.Time
}

// NewInviteService creates a new InviteService.
func NewInviteService(store *repository.Store, dispatcher *mailer.Dispatcher, frontendURL string, log *zap.Logger) *InviteService {
	return &InviteService{
		store:       store,
		dispatcher:  dispatcher,
		frontendURL: frontendURL,
		log:         log,
		now:         time.Now,
	}
}

// WithClock overrides the time source; used by tests.
func (s *InviteService) WithClock(now func() time.Time) *InviteService {
	s.now = now
	return s
}

// IssueInvitesInput represents a batch of invites for one team.
type IssueInvitesInput struct {
	TeamID  uint64
	Emails  []string
	Role    models.Role
	Message string
}

// IssueResult holds the persisted invites and the delivery outcome per recipient.
type IssueResult struct {
	Invites    []models.Invite
	Deliveries []mailer.DeliveryResult
	// IssuedAt is the service clock reading the invites were created at.
	IssuedAt time.Time
}

// Issue invites emails to a team in the actor's organization.
func (s *InviteService) Issue(ctx context.Context, actor Actor, input IssueInvitesInput) (*IssueResult, error) {
	orgID, err := actor.requireOrgAdmin()
	if err != nil {
		return nil, err
	}

	team, err := s.store.Teams.FindByID(ctx, input.TeamID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, internalError("failed to find team", err)
	}

	return s.IssueForTeam(ctx, team, input.Emails, input.Role, input.Message)
}

// IssueForTeam validates the batch, persists every invite in one transaction
// and then emails the recipients. Nothing is written if any email conflicts.
// Delivery failures are reported per recipient and never undo the invites.
func (s *InviteService) IssueForTeam(ctx context.Context, team *models.Team, rawEmails []string, role models.Role, message string) (*IssueResult, error) {
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleManager {
		return nil, ErrInviteRoleNotAllowed
	}

	emails, err := normalizeEmails(rawEmails)
	if err != nil {
		return nil, err
	}

	now := s.now()
	invites := make([]models.Invite, len(emails))
	messages := make([]mailer.Message, len(emails))
	for i, email := range emails {
		token, err := utils.GenerateInviteToken()
		if err != nil {
			return nil, internalError("failed to generate invite token", err)
		}
		invites[i] = models.Invite{
			Email:     email,
			TeamID:    team.ID,
			Token:     token,
			Role:      role,
			ExpiresAt: now.Add(constants.InviteTTL),
		}

		data := mailer.InviteData{
			TeamName:   team.Name,
			Message:    message,
			Link:       mailer.InviteLink(s.frontendURL, token),
			ExpiryDays: constants.InviteTTLDays,
		}
		if team.Department != nil {
			data.DepartmentName = team.Department.Name
		}
		messages[i], err = mailer.NewInviteMessage(email, data)
		if err != nil {
			return nil, internalError("failed to render invite email", err)
		}
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		// Serializes concurrent batches for the same team so the pending
		// check below cannot be raced.
		if err := tx.Teams.LockForUpdate(ctx, team.ID); err != nil {
			return internalError("failed to lock team", err)
		}

		existing, err := tx.Users.FindExistingEmails(ctx, emails)
		if err != nil {
			return internalError("failed to check existing users", err)
		}
		if len(existing) > 0 {
			return withDetail(ErrUserExists, "emails", existing)
		}

		pending, err := tx.Invites.FindPending(ctx, emails, team.ID, now)
		if err != nil {
			return internalError("failed to check pending invites", err)
		}
		if len(pending) > 0 {
			dup := make([]string, len(pending))
			for i, p := range pending {
				dup[i] = p.Email
			}
			return withDetail(ErrInvitePending, "emails", dup)
		}

		if err := tx.Invites.CreateBatch(ctx, invites); err != nil {
			return internalError("failed to create invites", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitesIssued.WithLabelValues(string(role)).Add(float64(len(invites)))
	s.log.Info("invites issued",
		zap.Uint64("team_id", team.ID),
		zap.Int("count", len(invites)),
		zap.String("role", string(role)))

	deliveries := s.dispatcher.SendAll(ctx, messages)

	return &IssueResult{
		Invites:    invites,
		Deliveries: deliveries,
		IssuedAt:   now,
	}, nil
}

// Validate returns the invite behind token if it can still be accepted.
func (s *InviteService) Validate(ctx context.Context, token string) (*models.Invite, error) {
	invite, err := s.findUsable(ctx, s.store, token)
	if err != nil {
		return nil, err
	}
	return invite, nil
}

// AcceptInviteInput carries the token and, for new users, their name.
type AcceptInviteInput struct {
	Token string
	Name  string
}

// AcceptResult is the user the invite resolved to.
type AcceptResult struct {
	User    *models.User
	Created bool
}

// Accept consumes the invite. The user change and the acceptance stamp
// commit together or not at all, and only one concurrent accept can win.
func (s *InviteService) Accept(ctx context.Context, input AcceptInviteInput) (*AcceptResult, error) {
	name := strings.TrimSpace(input.Name)
	result := &AcceptResult{}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		invite, err := s.findUsable(ctx, tx, input.Token)
		if err != nil {
			return err
		}

		user, err := tx.Users.FindByEmail(ctx, invite.Email)
		switch {
		case err == nil:
			user.TeamID = &invite.TeamID
			if err := tx.Users.Update(ctx, user); err != nil {
				return internalError("failed to move user to team", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if name == "" {
				return ErrNameRequired
			}
			user = &models.User{
				Email:      invite.Email,
				Name:       name,
				Role:       invite.Role,
				IsVerified: true,
				TeamID:     &invite.TeamID,
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return wrap(ErrUserExists, err)
				}
				return internalError("failed to create user", err)
			}
			result.Created = true
		default:
			return internalError("failed to find user", err)
		}

		if err := tx.Invites.MarkAccepted(ctx, invite.ID, s.now()); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return ErrInviteAlreadyAccepted
			}
			return internalError("failed to mark invite accepted", err)
		}

		result.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	outcome := "reteamed"
	if result.Created {
		outcome = "created"
	}
	metrics.InvitesAccepted.WithLabelValues(outcome).Inc()

	return result, nil
}

func (s *InviteService) findUsable(ctx context.Context, store *repository.Store, token string) (*models.Invite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInviteNotFound
	}

	invite, err := store.Invites.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, internalError("failed to find invite", err)
	}

	switch invite.State(s.now()) {
	case models.InviteStateAccepted:
		return nil, ErrInviteAlreadyAccepted
	case models.InviteStateExpired:
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// normalizeEmails lower-cases, validates and de-duplicates a batch.
func normalizeEmails(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	emails := make([]string, 0, len(raw))
	for _, r := range raw {
		email := utils.NormalizeEmail(r)
		if email == "" {
			continue
		}
		if !utils.ValidEmail(email) {
			return nil, withDetail(ErrInvalidEmail, "email", r)
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}

	if len(emails) == 0 {
		return nil, ErrNoInviteEmails
	}
	if len(emails) > constants.MaxInviteBatch {
		return nil, withDetail(ErrTooManyInvites, "max", constants.MaxInviteBatch)
	}
	return emails, nil
}
