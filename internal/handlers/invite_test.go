package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteHandler_SendDetailsAccept(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewInviteHandler(env.invites, env.log)
	admin, team := env.seedOrg(t, "acme")
	env.mail.failFor["bad@x.com"] = true

	r := env.router(&admin)
	r.POST("/invite", handler.Send)
	public := env.router(nil)
	public.GET("/invite/details/:token", handler.Details)
	public.POST("/invite/accept", handler.Accept)

	w, body := doJSON(t, r, http.MethodPost, "/invite", map[string]interface{}{
		"teamId": team.ID,
		"emails": []string{"alice@x.com", "bad@x.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var batch dto.InviteBatchDTO
	decodeData(t, body, &batch)
	assert.Equal(t, 2, batch.InvitesSent)
	assert.Equal(t, 1, batch.Delivered)
	require.Len(t, batch.Invites, 2)
	assert.Equal(t, models.InviteStatePending, batch.Invites[0].State)
	require.Len(t, batch.Deliveries, 2)
	assert.False(t, batch.Deliveries[1].Sent)
	assert.NotContains(t, w.Body.String(), "token")

	token := tokenFrom(t, env.mail.last(t))

	w, body = doJSON(t, public, http.MethodGet, "/invite/details/"+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var details dto.InviteDetailsDTO
	decodeData(t, body, &details)
	assert.Equal(t, "alice@x.com", details.Email)
	assert.Equal(t, team.ID, details.Team.ID)
	assert.Equal(t, models.RoleMember, details.Role)

	w, _ = doJSON(t, public, http.MethodPost, "/invite/accept", map[string]string{"token": token, "name": "Alice"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body = doJSON(t, public, http.MethodPost, "/invite/accept", map[string]string{"token": token, "name": "Alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "ALREADY_ACCEPTED", body.Error.Code)
}

func TestInviteHandler_ExpiredAndUnknown(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewInviteHandler(env.invites, env.log)
	_, team := env.seedOrg(t, "acme")

	expired := &models.Invite{
		Email:     "late@x.com",
		TeamID:    team.ID,
		Token:     "deadbeef",
		Role:      models.RoleMember,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, env.db.Create(expired).Error)

	r := env.router(nil)
	r.GET("/invite/details/:token", handler.Details)

	w, body := doJSON(t, r, http.MethodGet, "/invite/details/deadbeef", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EXPIRED", body.Error.Code)

	w, body = doJSON(t, r, http.MethodGet, "/invite/details/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invalid invite link", body.Message)
}

func TestInviteHandler_SendTrimsEmailsAndUsesServiceClock(t *testing.T) {
	env := setupHandlerTestEnv(t)
	issuedAt := time.Date(2020, 1, 6, 9, 0, 0, 0, time.UTC)
	dispatcher := mailer.NewDispatcher(env.mail, 2, time.Second, env.log)
	invites := services.NewInviteService(env.store, dispatcher, "https://app.myokr.test", env.log).
		WithClock(func() time.Time { return issuedAt })
	handler := NewInviteHandler(invites, env.log)
	admin, team := env.seedOrg(t, "acme")

	r := env.router(&admin)
	r.POST("/invite", handler.Send)

	w, body := doJSON(t, r, http.MethodPost, "/invite", map[string]interface{}{
		"teamId": team.ID,
		"emails": []string{"  Carol@X.com "},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var batch dto.InviteBatchDTO
	decodeData(t, body, &batch)
	require.Len(t, batch.Invites, 1)
	assert.Equal(t, "carol@x.com", batch.Invites[0].Email)
	// Long past by wall-clock time, but pending at the moment it was issued.
	assert.Equal(t, models.InviteStatePending, batch.Invites[0].State)
	assert.True(t, batch.Invites[0].ExpiresAt.Equal(issuedAt.Add(7*24*time.Hour)))

	w, body = doJSON(t, r, http.MethodPost, "/invite", map[string]interface{}{
		"teamId": team.ID,
		"emails": []string{"not-an-email"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)
}

func TestInviteHandler_ConflictDetails(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewInviteHandler(env.invites, env.log)
	admin, team := env.seedOrg(t, "acme")
	env.seedMember(t, "taken@x.com", team.ID)

	r := env.router(&admin)
	r.POST("/invite", handler.Send)

	w, body := doJSON(t, r, http.MethodPost, "/invite", map[string]interface{}{
		"teamId": team.ID,
		"emails": []string{"new@x.com", "taken@x.com"},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, []interface{}{"taken@x.com"}, body.Error.Details["emails"])

	w, _ = doJSON(t, r, http.MethodPost, "/invite", map[string]interface{}{
		"teamId": team.ID,
		"emails": []string{"new@x.com"},
		"role":   "ADMIN",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInviteHandler_MemberForbidden(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewInviteHandler(env.invites, env.log)
	_, team := env.seedOrg(t, "acme")
	member := env.seedMember(t, "m@x.com", team.ID)

	r := env.router(&member)
	r.POST("/invite", handler.Send)

	w, _ := doJSON(t, r, http.MethodPost, "/invite", map[string]interface{}{
		"teamId": team.ID,
		"emails": []string{"new@x.com"},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
