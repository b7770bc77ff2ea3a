package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initData(user string) string {
	values := url.Values{}
	values.Set("auth_date", "1677649900")
	values.Set("user", user)
	values.Set("hash", "e2e58")
	return values.Encode()
}

func TestExtractTelegramData(t *testing.T) {
	tests := []struct {
		name       string
		initData   string
		expectedID int64
		expectErr  bool
	}{
		{
			name:       "Valid user",
			initData:   initData(`{"id":5060715466,"first_name":"Bob","username":"defi_master"}`),
			expectedID: 5060715466,
		},
		{
			name:      "Missing user",
			initData:  "auth_date=1677649900",
			expectErr: true,
		},
		{
			name:      "Zero id",
			initData:  initData(`{"first_name":"Bob"}`),
			expectErr: true,
		},
		{
			name:      "Bad auth date",
			initData:  "auth_date=yesterday&user=%7B%22id%22%3A1%7D",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ExtractTelegramData(tt.initData)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, data.ID)
			assert.Equal(t, "defi_master", data.Username)
			assert.Equal(t, int64(1677649900), data.AuthDate.Unix())
		})
	}
}

func TestTelegramAuthMiddleware_DebugMode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewTelegramAuth("", true).TelegramAuthMiddleware())
	router.GET("/me", func(c *gin.Context) {
		user, ok := UserFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})

	tests := []struct {
		name           string
		header         string
		query          string
		expectedStatus int
	}{
		{name: "Header", header: "Telegram " + initData(`{"id":42}`), expectedStatus: http.StatusOK},
		{name: "Query parameter", query: "?init_data=" + url.QueryEscape(initData(`{"id":42}`)), expectedStatus: http.StatusOK},
		{name: "Missing", expectedStatus: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Bearer abc", expectedStatus: http.StatusUnauthorized},
		{name: "Garbage", header: "Telegram user=%7Bnot-json", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestTelegramAuthMiddleware_RejectsUnsignedData(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewTelegramAuth("123456:bot-token", false).TelegramAuthMiddleware())
	router.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Telegram "+initData(`{"id":42}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
