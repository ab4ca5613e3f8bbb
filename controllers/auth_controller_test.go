package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/utils"
)

func newAuthRouter(db *gorm.DB) *gin.Engine {
	ac := NewAuthController(db)
	r := gin.New()
	r.POST("/api/v1/auth/register", ac.Register)
	r.POST("/api/v1/auth/login", ac.Login)
	r.GET("/api/v1/auth/me", middleware.AuthRequired(), ac.Me)
	r.POST("/api/v1/auth/logout", middleware.AuthRequired(), ac.Logout)
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupControllerDB(t)
	r := newAuthRouter(db)

	w := postJSON(r, "/api/v1/auth/register", gin.H{
		"full_name": "Grace Hopper",
		"email":     "Grace@Example.com",
		"password":  "compilers",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token)
	// email is normalized to lower case
	assert.Equal(t, "grace@example.com", resp.Data.User.Email)

	var user models.User
	require.NoError(t, db.Where("email = ?", "grace@example.com").First(&user).Error)
	assert.NotEqual(t, "compilers", user.PasswordHash)

	// duplicate registration conflicts
	w = postJSON(r, "/api/v1/auth/register", gin.H{
		"full_name": "Grace Hopper",
		"email":     "grace@example.com",
		"password":  "compilers",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = postJSON(r, "/api/v1/auth/login", gin.H{
		"email":    "grace@example.com",
		"password": "compilers",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/api/v1/auth/login", gin.H{
		"email":    "grace@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	db := setupControllerDB(t)
	r := newAuthRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	db := setupControllerDB(t)
	r := newAuthRouter(db)

	w := postJSON(r, "/api/v1/auth/register", gin.H{
		"full_name": "Grace Hopper",
		"email":     "grace@example.com",
		"password":  "compilers",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data.Token

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, utils.IsTokenBlacklisted(token))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
