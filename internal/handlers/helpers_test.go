package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/config"
	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/middleware"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/services"
	"github.com/myokr/okr-api/internal/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[msg.To] {
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

type handlerTestEnv struct {
	db       *gorm.DB
	store    *repository.Store
	mail     *recordingMailer
	log      *zap.Logger
	auth     *services.AuthService
	invites  *services.InviteService
	okrs     *services.OKRService
	orgs     *services.OrganizationService
	depts    *services.DepartmentService
	teams    *services.TeamService
	sessions sessions.Store
	cookie   sessions.Options
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	tokens := token.NewManager("test-secret", time.Hour)
	invites := services.NewInviteService(store, dispatcher, "https://app.myokr.test", log)

	cfg := &config.Config{
		SessionStore:  "cookie",
		SessionSecret: "test-session-secret",
		SessionTTL:    constants.SessionTTL,
	}
	sessionStore, err := middleware.NewSessionStore(cfg)
	require.NoError(t, err)

	return handlerTestEnv{
		db:       db,
		store:    store,
		mail:     mail,
		log:      log,
		auth:     services.NewAuthService(store, dispatcher, tokens, log),
		invites:  invites,
		okrs:     services.NewOKRService(store),
		orgs:     services.NewOrganizationService(store),
		depts:    services.NewDepartmentService(store),
		teams:    services.NewTeamService(store, invites, log),
		sessions: sessionStore,
		cookie:   middleware.SessionOptions(cfg),
	}
}

// router returns an engine with sessions and, when actor is non-nil, an
// authenticated caller already in context.
func (env handlerTestEnv) router(actor *services.Actor) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, env.sessions))
	if actor != nil {
		a := *actor
		r.Use(func(c *gin.Context) {
			c.Set(constants.ContextKeyActor, a)
			c.Set(constants.ContextKeyUserID, a.UserID)
			c.Next()
		})
	}
	return r
}

func (env handlerTestEnv) seedOrg(t *testing.T, name string) (services.Actor, *models.Team) {
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

func (env handlerTestEnv) seedMember(t *testing.T, email string, teamID uint64) services.Actor {
	t.Helper()
	user := &models.User{Email: email, Name: email, Role: models.RoleMember, IsVerified: true, TeamID: &teamID}
	require.NoError(t, env.db.Create(user).Error)
	actor, err := env.auth.ResolveActor(context.Background(), user.ID)
	require.NoError(t, err)
	return actor
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, r http.Handler, method, url string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, v))
}

var (
	otpPattern   = regexp.MustCompile(`>(\d{6})</p>`)
	tokenPattern = regexp.MustCompile(`accept-invite\?token=([0-9a-f]{64})`)
)

func otpFrom(t *testing.T, msg mailer.Message) string {
	t.Helper()
	m := otpPattern.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2)
	return m[1]
}

func tokenFrom(t *testing.T, msg mailer.Message) string {
	t.Helper()
	m := tokenPattern.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2)
	return m[1]
}
