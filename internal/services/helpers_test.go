package services

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]bool
	failAll bool
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll || m.failFor[msg.To] {
		return errors.New("provider down")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type serviceTestEnv struct {
	db      *gorm.DB
	store   *repository.Store
	mail    *recordingMailer
	clock   *testClock
	tokens  *token.Manager
	invites *InviteService
	okrs    *OKRService
	auth    *AuthService
	orgs    *OrganizationService
	depts   *DepartmentService
	teams   *TeamService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	log := zap.NewNop()
	store := repository.NewStore(db)
	mail := &recordingMailer{failFor: map[string]bool{}}
	dispatcher := mailer.NewDispatcher(mail, 4, time.Second, log)
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	tokens := token.NewManager("test-secret", 7*24*time.Hour).WithClock(clock.Now)

	invites := NewInviteService(store, dispatcher, "https://app.myokr.test", log).WithClock(clock.Now)

	return serviceTestEnv{
		db:      db,
		store:   store,
		mail:    mail,
		clock:   clock,
		tokens:  tokens,
		invites: invites,
		okrs:    NewOKRService(store),
		auth:    NewAuthService(store, dispatcher, tokens, log).WithClock(clock.Now),
		orgs:    NewOrganizationService(store),
		depts:   NewDepartmentService(store),
		teams:   NewTeamService(store, invites, log),
	}
}

// seedOrg creates an admin with an organization and one team.
func (env serviceTestEnv) seedOrg(t *testing.T, name string) (Actor, *models.Team) {
	t.Helper()
	admin := &models.User{Email: "admin@" + name + ".com", Name: "Admin", Role: models.RoleAdmin, IsVerified: true}
	require.NoError(t, env.db.Create(admin).Error)
	org := &models.Organization{Name: name, OwnerID: admin.ID}
	require.NoError(t, env.db.Create(org).Error)
	team := &models.Team{Name: name + " Team", OrganizationID: org.ID}
	require.NoError(t, env.db.Create(team).Error)

	actor, err := env.auth.ResolveActor(context.Background(), admin.ID)
	require.NoError(t, err)
	return actor, team
}

func (env serviceTestEnv) seedMember(t *testing.T, email string, teamID uint64, role models.Role) Actor {
	t.Helper()
	user := &models.User{Email: email, Name: email, Role: role, IsVerified: true, TeamID: &teamID}
	require.NoError(t, env.db.Create(user).Error)
	actor, err := env.auth.ResolveActor(context.Background(), user.ID)
	require.NoError(t, err)
	return actor
}

var otpPattern = regexp.MustCompile(`>(\d{6})</p>`)

func otpFrom(t *testing.T, msg mailer.Message) string {
	t.Helper()
	m := otpPattern.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "no code in %q", msg.HTML)
	return m[1]
}

func tokenFromLink(t *testing.T, msg mailer.Message) string {
	t.Helper()
	m := regexp.MustCompile(`accept-invite\?token=([0-9a-f]{64})`).FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2, "no invite link in %q", msg.HTML)
	return m[1]
}
