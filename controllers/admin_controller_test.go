package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/services"
)

func newAdminRouter(db *gorm.DB, email string) *gin.Engine {
	ac := NewAdminController(db)

	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextEmailKey, email)
		ctx.Next()
	})
	r.GET("/api/v1/admin/stats", ac.GetStats)
	r.GET("/api/v1/admin/email-log", ac.ListEmailLog)
	return r
}

func TestAdminStatsRequiresAdminEmail(t *testing.T) {
	db := setupControllerDB(t)
	r := newAdminRouter(db, "someone@cards.example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminStatsTodayStartsAtLocalMidnight(t *testing.T) {
	db := setupControllerDB(t)
	card := seedCard(t, db)
	r := newAdminRouter(db, "admin@cards.example.com")

	today := services.StartOfDay(time.Now())
	views := []models.CardView{
		{CardID: card.ID, ViewedAt: today, ViewerIP: "203.0.113.1"},
		{CardID: card.ID, ViewedAt: today.Add(-time.Minute), ViewerIP: "203.0.113.2"},
	}
	require.NoError(t, db.Create(&views).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			UserCount  int64 `json:"user_count"`
			CardCount  int64 `json:"card_count"`
			ViewCount  int64 `json:"view_count"`
			ViewsToday int64 `json:"views_today"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, int64(1), resp.Data.UserCount)
	assert.Equal(t, int64(1), resp.Data.CardCount)
	assert.Equal(t, int64(2), resp.Data.ViewCount)
	// The row one minute before local midnight belongs to yesterday.
	assert.Equal(t, int64(1), resp.Data.ViewsToday)
}

func TestAdminEmailLogListsLatest(t *testing.T) {
	db := setupControllerDB(t)
	r := newAdminRouter(db, "admin@cards.example.com")

	logs := []models.EmailLog{
		{Recipient: "a@example.com", Subject: "first", Status: models.EmailStatusSent, SentAt: time.Now().Add(-time.Hour)},
		{Recipient: "b@example.com", Subject: "second", Status: models.EmailStatusFailed, SentAt: time.Now()},
	}
	require.NoError(t, db.Create(&logs).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/email-log", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Items []models.EmailLog `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, "second", resp.Data.Items[0].Subject)
}
