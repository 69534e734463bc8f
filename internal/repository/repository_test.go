package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return NewStore(db), db
}

func seedTeam(t *testing.T, db *gorm.DB) (*models.Organization, *models.Team) {
	t.Helper()
	admin := &models.User{Email: "admin@x.com", Role: models.RoleAdmin, IsVerified: true}
	require.NoError(t, db.Create(admin).Error)
	org := &models.Organization{Name: "Acme", OwnerID: admin.ID}
	require.NoError(t, db.Create(org).Error)
	team := &models.Team{Name: "Platform", OrganizationID: org.ID}
	require.NoError(t, db.Create(team).Error)
	return org, team
}

func TestInviteRepository_MarkAcceptedOnce(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	_, team := seedTeam(t, db)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Invites.CreateBatch(ctx, []models.Invite{
		{Email: "a@x.com", TeamID: team.ID, Token: "tok-a", Role: models.RoleMember, ExpiresAt: now.Add(time.Hour)},
	}))

	invite, err := store.Invites.FindByToken(ctx, "tok-a")
	require.NoError(t, err)
	require.Equal(t, "Platform", invite.Team.Name)

	require.NoError(t, store.Invites.MarkAccepted(ctx, invite.ID, now))
	require.ErrorIs(t, store.Invites.MarkAccepted(ctx, invite.ID, now.Add(time.Minute)), ErrNoRowsAffected)

	invite, err = store.Invites.FindByToken(ctx, "tok-a")
	require.NoError(t, err)
	require.NotNil(t, invite.AcceptedAt)
	require.True(t, invite.AcceptedAt.Equal(now))
}

func TestInviteRepository_FindPending(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	_, team := seedTeam(t, db)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	accepted := now.Add(-time.Hour)
	require.NoError(t, store.Invites.CreateBatch(ctx, []models.Invite{
		{Email: "live@x.com", TeamID: team.ID, Token: "t1", Role: models.RoleMember, ExpiresAt: now.Add(time.Hour)},
		{Email: "old@x.com", TeamID: team.ID, Token: "t2", Role: models.RoleMember, ExpiresAt: now.Add(-time.Hour)},
		{Email: "done@x.com", TeamID: team.ID, Token: "t3", Role: models.RoleMember, ExpiresAt: now.Add(time.Hour), AcceptedAt: &accepted},
	}))

	pending, err := store.Invites.FindPending(ctx, []string{"live@x.com", "old@x.com", "done@x.com"}, team.ID, now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "live@x.com", pending[0].Email)

	pending, err = store.Invites.FindPending(ctx, []string{"live@x.com"}, team.ID+1, now)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	_, team := seedTeam(t, db)

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.Users.Create(ctx, &models.User{Email: "rolled@x.com", TeamID: &team.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Users.FindByEmail(ctx, "rolled@x.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_FindExistingEmails(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	seedTeam(t, db)

	existing, err := store.Users.FindExistingEmails(ctx, []string{"admin@x.com", "new@x.com"})
	require.NoError(t, err)
	require.Equal(t, []string{"admin@x.com"}, existing)
}

func TestOKRRepository_DeleteObjectiveRemovesKeyResults(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	_, team := seedTeam(t, db)

	objective := &models.Objective{
		Title:     "Ship v2",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(24 * time.Hour),
		TeamID:    team.ID,
		KeyResults: []models.KeyResult{
			{Title: "Beta users", TargetValue: 100, Status: models.KeyResultNotStarted},
			{Title: "Bugs closed", TargetValue: 10, Status: models.KeyResultNotStarted},
		},
	}
	require.NoError(t, store.OKRs.CreateObjective(ctx, objective))

	krs, err := store.OKRs.ListKeyResults(ctx, objective.ID)
	require.NoError(t, err)
	require.Len(t, krs, 2)

	require.NoError(t, store.OKRs.DeleteObjective(ctx, objective.ID))

	krs, err = store.OKRs.ListKeyResults(ctx, objective.ID)
	require.NoError(t, err)
	require.Empty(t, krs)

	count, err := store.OKRs.CountByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestTeamRepository_ScopedToOrganization(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	org, team := seedTeam(t, db)

	found, err := store.Teams.FindByID(ctx, team.ID, org.ID)
	require.NoError(t, err)
	require.Equal(t, team.ID, found.ID)

	_, err = store.Teams.FindByID(ctx, team.ID, org.ID+1)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	teams, total, err := store.Teams.List(ctx, org.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, teams, 1)
}

func TestOTPRepository_MarkUsedOnce(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	otp := &models.OTP{Email: "bob@x.com", CodeHash: "h", ExpiresAt: now.Add(5 * time.Minute)}
	require.NoError(t, store.OTPs.Create(ctx, otp))

	active, err := store.OTPs.FindActive(ctx, "bob@x.com", now)
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, store.OTPs.MarkUsed(ctx, otp.ID))
	require.ErrorIs(t, store.OTPs.MarkUsed(ctx, otp.ID), ErrNoRowsAffected)

	active, err = store.OTPs.FindActive(ctx, "bob@x.com", now)
	require.NoError(t, err)
	require.Empty(t, active)
}
