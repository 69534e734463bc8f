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
	"github.com/myokr/okr-api/internal/token"
	"github.com/myokr/okr-api/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OTPType is the purpose of a one-time code.
type OTPType string

const (
	OTPSignup OTPType = "signup"
	OTPLogin  OTPType = "login"
	OTPForgot OTPType = "forgot"
)

// Valid reports whether t is a known purpose.
func (t OTPType) Valid() bool {
	switch t {
	case OTPSignup, OTPLogin, OTPForgot:
		return true
	}
	return false
}

// AuthService handles one-time code sign in, sessions and the caller's profile.
type AuthService struct {
	store      *repository.Store
	dispatcher *mailer.Dispatcher
	tokens     *token.Manager
	log        *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store, dispatcher *mailer.Dispatcher, tokens *token.Manager, log *zap.Logger) *AuthService {
	return &AuthService{
		store:      store,
		dispatcher: dispatcher,
		tokens:     tokens,
		log:        log,
		now:        time.Now,
	}
}

// WithClock overrides the time source; used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// SendOTPInput represents a request for a one-time code.
type SendOTPInput struct {
	Email string
	Type  OTPType
	Name  string
}

// SendOTP emails a fresh code. Signup registers a new unverified admin;
// login and forgot need an existing user.
func (s *AuthService) SendOTP(ctx context.Context, input SendOTPInput) error {
	email := utils.NormalizeEmail(input.Email)
	if !utils.ValidEmail(email) {
		return ErrInvalidEmail
	}
	if !input.Type.Valid() {
		return ErrInvalidOTPType
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return internalError("failed to generate otp", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return internalError("failed to hash otp", err)
	}

	now := s.now()
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		_, err := tx.Users.FindByEmail(ctx, email)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if input.Type != OTPSignup {
				return ErrUserNotFound
			}
			user := &models.User{
				Email: email,
				Name:  strings.TrimSpace(input.Name),
				Role:  models.RoleAdmin,
			}
			if err := tx.Users.Create(ctx, user); err != nil {
				return internalError("failed to create user", err)
			}
		case err != nil:
			return internalError("failed to find user", err)
		}

		otp := &models.OTP{
			Email:     email,
			CodeHash:  string(hash),
			ExpiresAt: now.Add(constants.OTPTTL),
		}
		if err := tx.OTPs.Create(ctx, otp); err != nil {
			return internalError("failed to store otp", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	msg, err := mailer.NewOTPMessage(email, mailer.OTPData{
		Purpose:       string(input.Type),
		Code:          code,
		ExpiryMinutes: int(constants.OTPTTL / time.Minute),
	})
	if err != nil {
		return internalError("failed to render otp email", err)
	}
	if err := s.dispatcher.Send(ctx, msg); err != nil {
		return wrap(ErrEmailDelivery, err)
	}
	return nil
}

// VerifyResult is a signed in user and their session token.
type VerifyResult struct {
	User  *models.User
	Token string
}

// VerifyOTP consumes a matching code and issues a session token.
func (s *AuthService) VerifyOTP(ctx context.Context, rawEmail, code string) (*VerifyResult, error) {
	email := utils.NormalizeEmail(rawEmail)
	code = strings.TrimSpace(code)
	if len(code) != constants.OTPLength {
		metrics.OTPVerifications.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidOTP
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		otps, err := tx.OTPs.FindActive(ctx, email, s.now())
		if err != nil {
			return internalError("failed to load otps", err)
		}

		var matched *models.OTP
		for i := range otps {
			if bcrypt.CompareHashAndPassword([]byte(otps[i].CodeHash), []byte(code)) == nil {
				matched = &otps[i]
				break
			}
		}
		if matched == nil {
			return ErrInvalidOTP
		}
		if err := tx.OTPs.MarkUsed(ctx, matched.ID); err != nil {
			if errors.Is(err, repository.ErrNoRowsAffected) {
				return ErrInvalidOTP
			}
			return internalError("failed to consume otp", err)
		}

		user, err = tx.Users.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return internalError("failed to find user", err)
		}
		if !user.IsVerified {
			user.IsVerified = true
			if err := tx.Users.Update(ctx, user); err != nil {
				return internalError("failed to verify user", err)
			}
		}
		return nil
	})
	if err != nil {
		if KindOf(err) == KindValidation {
			metrics.OTPVerifications.WithLabelValues("invalid").Inc()
		}
		return nil, err
	}
	metrics.OTPVerifications.WithLabelValues("ok").Inc()

	raw, err := s.tokens.Issue(user)
	if err != nil {
		return nil, internalError("failed to issue session", err)
	}

	user, err = s.store.Users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, internalError("failed to reload user", err)
	}
	return &VerifyResult{User: user, Token: raw}, nil
}

// ResolveSession verifies a session token and resolves its actor.
func (s *AuthService) ResolveSession(ctx context.Context, raw string) (Actor, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Actor{}, wrap(ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return Actor{}, wrap(ErrUnauthorized, err)
	}
	return s.ResolveActor(ctx, userID)
}

// ResolveActor loads the caller behind a user id.
func (s *AuthService) ResolveActor(ctx context.Context, userID uint64) (Actor, error) {
	return resolveActor(ctx, s.store, userID)
}

// Profile is the caller's view of the system. Admins get their organization
// tree; everyone else gets their team and their own objectives.
type Profile struct {
	User         *models.User
	Organization *models.Organization
	Team         *models.Team
	Objectives   []models.Objective
}

// Profile loads the caller's profile.
func (s *AuthService) Profile(ctx context.Context, actor Actor) (*Profile, error) {
	user, err := s.store.Users.FindByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalError("failed to load user", err)
	}
	profile := &Profile{User: user}

	if user.Role == models.RoleAdmin {
		if actor.OrganizationID != nil {
			org, err := s.store.Organizations.LoadTree(ctx, *actor.OrganizationID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, internalError("failed to load organization", err)
			}
			profile.Organization = org
		}
		return profile, nil
	}

	if user.TeamID != nil && actor.OrganizationID != nil {
		team, err := s.store.Teams.FindWithMembers(ctx, *user.TeamID, *actor.OrganizationID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internalError("failed to load team", err)
		}
		profile.Team = team
	}

	objectives, err := s.store.OKRs.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, internalError("failed to load objectives", err)
	}
	profile.Objectives = objectives

	return profile, nil
}

// UpdateProfileInput is a partial profile update.
type UpdateProfileInput struct {
	Name  *string
	Email *string
}

// UpdateProfile changes the caller's name or email.
func (s *AuthService) UpdateProfile(ctx context.Context, actor Actor, input UpdateProfileInput) (*models.User, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users.FindByID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return internalError("failed to load user", err)
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return ErrNameRequired
			}
			user.Name = name
		}
		if input.Email != nil {
			email := utils.NormalizeEmail(*input.Email)
			if !utils.ValidEmail(email) {
				return ErrInvalidEmail
			}
			if email != user.Email {
				other, err := tx.Users.FindByEmail(ctx, email)
				if err == nil && other.ID != user.ID {
					return ErrEmailTaken
				}
				if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
					return internalError("failed to check email", err)
				}
				user.Email = email
			}
		}

		if err := tx.Users.Update(ctx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return internalError("failed to update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteProfile removes the caller. An admin who still owns an organization
// cannot be removed.
func (s *AuthService) DeleteProfile(ctx context.Context, actor Actor) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Organizations.FindByOwnerID(ctx, actor.UserID); err == nil {
			return ErrOwnerCannotLeave
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internalError("failed to check organization", err)
		}

		if err := tx.OKRs.UnassignUser(ctx, actor.UserID); err != nil {
			return internalError("failed to unassign objectives", err)
		}
		if err := tx.Users.Delete(ctx, actor.UserID); err != nil {
			return internalError("failed to delete user", err)
		}
		return nil
	})
}
