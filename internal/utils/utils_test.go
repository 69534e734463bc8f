package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInviteToken(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		token, err := GenerateInviteToken()
		require.NoError(t, err)
		require.Len(t, token, 64)
		require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), token)

		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	}
}

func TestNormalizeAndValidateEmail(t *testing.T) {
	assert.Equal(t, "alice@x.com", NormalizeEmail("  Alice@X.com "))
	assert.True(t, ValidEmail("alice@x.com"))
	assert.False(t, ValidEmail("alice"))
	assert.False(t, ValidEmail(""))
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{query: "", wantPage: 1, wantLimit: 20, wantOffset: 0},
		{query: "page=3&limit=10", wantPage: 3, wantLimit: 10, wantOffset: 20},
		{query: "page=0&limit=1000", wantPage: 1, wantLimit: 20, wantOffset: 0},
		{query: "page=abc", wantPage: 1, wantLimit: 20, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/?"+tt.query, nil)

			params := GetPaginationParams(c)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}
