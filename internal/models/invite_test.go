package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInviteState(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	accepted := now.Add(-time.Hour)

	tests := []struct {
		name   string
		invite Invite
		want   InviteState
	}{
		{
			name:   "pending",
			invite: Invite{ExpiresAt: now.Add(time.Hour)},
			want:   InviteStatePending,
		},
		{
			name:   "expired",
			invite: Invite{ExpiresAt: now.Add(-time.Second)},
			want:   InviteStateExpired,
		},
		{
			name:   "expires exactly now is still pending",
			invite: Invite{ExpiresAt: now},
			want:   InviteStatePending,
		},
		{
			name:   "accepted",
			invite: Invite{ExpiresAt: now.Add(time.Hour), AcceptedAt: &accepted},
			want:   InviteStateAccepted,
		},
		{
			name:   "accepted then lapsed stays accepted",
			invite: Invite{ExpiresAt: now.Add(-time.Minute), AcceptedAt: &accepted},
			want:   InviteStateAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.invite.State(now))
		})
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleManager.Valid())
	assert.True(t, RoleMember.Valid())
	assert.False(t, Role("OWNER").Valid())
}
