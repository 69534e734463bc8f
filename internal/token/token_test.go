package token

import (
	"testing"
	"time"

	"github.com/myokr/okr-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := &models.User{ID: 42, Email: "alice@x.com", Role: models.RoleAdmin}

	raw, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", claims.Email)
	require.Equal(t, models.RoleAdmin, claims.Role)

	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, uint64(42), id)
}

func TestManager_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewManager("secret", time.Hour).WithClock(func() time.Time { return now })

	raw, err := m.Issue(&models.User{ID: 1, Email: "a@x.com", Role: models.RoleMember})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = m.Parse(raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_WrongSecret(t *testing.T) {
	raw, err := NewManager("one", time.Hour).Issue(&models.User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Garbage(t *testing.T) {
	_, err := NewManager("secret", time.Hour).Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
