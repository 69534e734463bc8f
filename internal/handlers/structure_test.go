package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationHandler_CreateTwice(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewOrganizationHandler(env.orgs, env.log)

	u1 := &models.User{Email: "u1@x.com", Role: models.RoleAdmin}
	u2 := &models.User{Email: "u2@x.com", Role: models.RoleAdmin}
	require.NoError(t, env.db.Create(u1).Error)
	require.NoError(t, env.db.Create(u2).Error)

	r1 := env.router(&services.Actor{UserID: u1.ID, Role: models.RoleAdmin})
	r1.POST("/organization", handler.Create)
	r2 := env.router(&services.Actor{UserID: u2.ID, Role: models.RoleAdmin})
	r2.POST("/organization", handler.Create)

	w, body := doJSON(t, r1, http.MethodPost, "/organization", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, w.Code)
	var org dto.OrganizationDTO
	decodeData(t, body, &org)
	assert.Equal(t, "Acme", org.Name)

	w, body = doJSON(t, r2, http.MethodPost, "/organization", map[string]string{"name": "Acme"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Organization already exists", body.Message)
	assert.False(t, body.Success)
}

func TestOrganizationHandler_Tree(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewOrganizationHandler(env.orgs, env.log)
	admin, team := env.seedOrg(t, "acme")
	env.seedMember(t, "m@x.com", team.ID)

	r := env.router(&admin)
	r.GET("/organization", handler.Get)

	w, body := doJSON(t, r, http.MethodGet, "/organization", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tree dto.OrganizationTreeDTO
	decodeData(t, body, &tree)
	assert.Equal(t, "acme", tree.Name)
	require.Len(t, tree.UnassignedTeams, 1)
	assert.Len(t, tree.UnassignedTeams[0].Users, 1)
}

func TestDepartmentHandler_RestrictDelete(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewDepartmentHandler(env.depts, env.log)
	admin, team := env.seedOrg(t, "acme")

	r := env.router(&admin)
	r.POST("/department", handler.Create)
	r.GET("/department", handler.List)
	r.GET("/department/:id", handler.Get)
	r.PUT("/department/:id", handler.Update)
	r.DELETE("/department/:id", handler.Delete)

	w, body := doJSON(t, r, http.MethodPost, "/department", map[string]interface{}{
		"name": "Eng", "teamIds": []uint64{team.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var dept dto.DepartmentDTO
	decodeData(t, body, &dept)
	require.Len(t, dept.Teams, 1)

	url := fmt.Sprintf("/department/%d", dept.ID)
	w, body = doJSON(t, r, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, body.Error)
	assert.EqualValues(t, 1, body.Error.Details["teams"])

	w, _ = doJSON(t, r, http.MethodPut, url, map[string]interface{}{"teamIds": []uint64{}})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, url, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = doJSON(t, r, http.MethodGet, "/department", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.DepartmentListResponse
	decodeData(t, body, &list)
	assert.Empty(t, list.Departments)
}

func TestTeamHandler_CreateAndRestrictDelete(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewTeamHandler(env.teams, env.log)
	admin, team := env.seedOrg(t, "acme")
	env.seedMember(t, "old@x.com", team.ID)

	r := env.router(&admin)
	r.POST("/team", handler.Create)
	r.GET("/team/:id", handler.Get)
	r.DELETE("/team/:id", handler.Delete)

	w, body := doJSON(t, r, http.MethodPost, "/team", map[string]interface{}{
		"name":   "Platform",
		"emails": []string{"old@x.com", "fresh@x.com"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Team     dto.TeamDTO        `json:"team"`
		Attached []string           `json:"attached"`
		Invites  dto.InviteBatchDTO `json:"invites"`
	}
	decodeData(t, body, &created)
	assert.Equal(t, []string{"old@x.com"}, created.Attached)
	assert.Equal(t, 1, created.Invites.InvitesSent)
	assert.Equal(t, 1, created.Invites.Delivered)

	w, body = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/team/%d", created.Team.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.EqualValues(t, 1, body.Error.Details["users"])

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/team/%d", team.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/team/%d", team.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamHandler_MemberSeesOwnTeam(t *testing.T) {
	env := setupHandlerTestEnv(t)
	handler := NewTeamHandler(env.teams, env.log)
	admin, team := env.seedOrg(t, "acme")
	member := env.seedMember(t, "m@x.com", team.ID)
	require.NoError(t, env.db.Create(&models.Team{Name: "Other", OrganizationID: *admin.OrganizationID}).Error)

	r := env.router(&member)
	r.GET("/team", handler.List)
	r.POST("/team", handler.Create)

	w, body := doJSON(t, r, http.MethodGet, "/team", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.TeamListResponse
	decodeData(t, body, &list)
	require.Len(t, list.Teams, 1)
	assert.Equal(t, team.ID, list.Teams[0].ID)

	w, _ = doJSON(t, r, http.MethodPost, "/team", map[string]interface{}{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
