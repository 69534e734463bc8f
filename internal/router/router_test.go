package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/config"
	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/database"
	"github.com/myokr/okr-api/internal/handlers"
	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/middleware"
	"github.com/myokr/okr-api/internal/repository"
	"github.com/myokr/okr-api/internal/services"
	"github.com/myokr/okr-api/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type inbox struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (i *inbox) Send(_ context.Context, msg mailer.Message) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, msg)
	return nil
}

func (i *inbox) find(t *testing.T, pattern *regexp.Regexp) string {
	t.Helper()
	i.mu.Lock()
	defer i.mu.Unlock()
	require.NotEmpty(t, i.msgs)
	m := pattern.FindStringSubmatch(i.msgs[len(i.msgs)-1].HTML)
	require.Len(t, m, 2)
	return m[1]
}

type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, url string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	if cks := w.Result().Cookies(); len(cks) > 0 {
		c.cookies = cks
	}

	var out map[string]interface{}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func newTestServer(t *testing.T) (http.Handler, *inbox) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := zap.NewNop()
	store := repository.NewStore(db)
	mail := &inbox{}
	dispatcher := mailer.NewDispatcher(mail, 2, time.Second, log)
	tokens := token.NewManager("test-secret", time.Hour)

	authService := services.NewAuthService(store, dispatcher, tokens, log)
	inviteService := services.NewInviteService(store, dispatcher, "http://localhost:5173", log)

	cfg := &config.Config{SessionStore: "cookie", SessionSecret: "test-session-secret", SessionTTL: constants.SessionTTL}
	sessionStore, err := middleware.NewSessionStore(cfg)
	require.NoError(t, err)

	engine := New(Options{
		DB:            db,
		Log:           log,
		Sessions:      sessionStore,
		Resolver:      authService,
		ExposeMetrics: true,
	}, Handlers{
		Auth:         handlers.NewAuthHandler(authService, middleware.SessionOptions(cfg), log),
		Organization: handlers.NewOrganizationHandler(services.NewOrganizationService(store), log),
		Department:   handlers.NewDepartmentHandler(services.NewDepartmentService(store), log),
		Team:         handlers.NewTeamHandler(services.NewTeamService(store, inviteService, log), log),
		Invite:       handlers.NewInviteHandler(inviteService, log),
		OKR:          handlers.NewOKRHandler(services.NewOKRService(store), log),
		AI:           handlers.NewAIHandler(services.NewAIService("", "", "m", log), log),
	})
	return WithCORS(engine, "http://localhost:5173"), mail
}

var (
	otpRe    = regexp.MustCompile(`>(\d{6})</p>`)
	inviteRe = regexp.MustCompile(`accept-invite\?token=([0-9a-f]{64})`)
)

func TestAPI_AdminInvitesMember(t *testing.T) {
	h, mail := newTestServer(t)
	admin := &client{t: t, h: h}

	status, _ := admin.do(http.MethodPost, "/api/v1/auth/send-otp", map[string]string{"email": "boss@x.com", "type": "signup", "name": "Boss"})
	require.Equal(t, http.StatusOK, status)
	status, _ = admin.do(http.MethodPost, "/api/v1/auth/verify-otp", map[string]string{"email": "boss@x.com", "otp": mail.find(t, otpRe)})
	require.Equal(t, http.StatusOK, status)

	status, _ = admin.do(http.MethodPost, "/api/v1/organization", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, status)

	status, body := admin.do(http.MethodPost, "/api/v1/team", map[string]interface{}{"name": "Core"})
	require.Equal(t, http.StatusCreated, status)
	teamID := body["data"].(map[string]interface{})["team"].(map[string]interface{})["id"]

	status, body = admin.do(http.MethodPost, "/api/v1/invite", map[string]interface{}{"teamId": teamID, "emails": []string{"alice@x.com"}})
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 1, body["data"].(map[string]interface{})["invitesSent"])
	assert.EqualValues(t, 1, body["data"].(map[string]interface{})["delivered"])

	guest := &client{t: t, h: h}
	token := mail.find(t, inviteRe)
	status, _ = guest.do(http.MethodPost, "/api/v1/invite/accept", map[string]string{"token": token, "name": "Alice"})
	require.Equal(t, http.StatusCreated, status)

	status, body = guest.do(http.MethodPost, "/api/v1/invite/accept", map[string]string{"token": token, "name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ALREADY_ACCEPTED", body["error"].(map[string]interface{})["code"])

	status, body = admin.do(http.MethodGet, "/api/v1/organization", nil)
	require.Equal(t, http.StatusOK, status)
	teams := body["data"].(map[string]interface{})["unassignedTeams"].([]interface{})
	require.Len(t, teams, 1)
	assert.Len(t, teams[0].(map[string]interface{})["users"], 1)
}

func TestAPI_RequiresSession(t *testing.T) {
	h, _ := newTestServer(t)
	c := &client{t: t, h: h}

	status, body := c.do(http.MethodGet, "/api/v1/auth/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, false, body["success"])

	status, _ = c.do(http.MethodPost, "/api/v1/ai/generate-okr-suggestion", map[string]string{"field": "title", "text": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_CORSPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/send-otp", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestAPI_Metrics(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
