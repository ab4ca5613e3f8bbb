package controllers

import (
	"bytes"
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
)

func newContactRouter(db *gorm.DB, userID uint) *gin.Engine {
	cc := NewContactController(db)
	r := gin.New()
	r.POST("/api/v1/card/:id/contact", cc.Submit)

	authed := r.Group("")
	authed.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Next()
	})
	authed.GET("/api/v1/messages", cc.Inbox)
	authed.PATCH("/api/v1/messages/:id/read", cc.MarkRead)
	return r
}

func postJSON(r *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContactSubmitPersistsMessage(t *testing.T) {
	db := setupControllerDB(t)
	card := seedCard(t, db)
	r := newContactRouter(db, card.UserID)

	w := postJSON(r, "/api/v1/card/1/contact", gin.H{
		"name":    "Charles Babbage",
		"email":   "charles@example.com",
		"company": "Difference Engines",
		"message": "Shall we collaborate?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var msg models.ContactMessage
	require.NoError(t, db.Where("card_id = ?", card.ID).First(&msg).Error)
	assert.Equal(t, "Charles Babbage", msg.Name)
	assert.Equal(t, "charles@example.com", msg.Email)
	assert.False(t, msg.IsRead)
	assert.False(t, msg.SubmittedAt.IsZero())
}

func TestContactSubmitValidation(t *testing.T) {
	db := setupControllerDB(t)
	seedCard(t, db)
	r := newContactRouter(db, 1)

	// missing message body
	w := postJSON(r, "/api/v1/card/1/contact", gin.H{
		"name":  "Charles",
		"email": "charles@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown card
	w = postJSON(r, "/api/v1/card/999/contact", gin.H{
		"name":    "Charles",
		"email":   "charles@example.com",
		"message": "hello",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestContactInboxAndMarkRead(t *testing.T) {
	db := setupControllerDB(t)
	card := seedCard(t, db)

	other := models.User{FullName: "Other Owner", Email: "other@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&other).Error)

	r := newContactRouter(db, card.UserID)
	w := postJSON(r, "/api/v1/card/1/contact", gin.H{
		"name":    "Charles Babbage",
		"email":   "charles@example.com",
		"message": "Shall we collaborate?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Total  int `json:"total"`
			Unread int `json:"unread"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Unread)

	req = httptest.NewRequest(http.MethodPatch, "/api/v1/messages/1/read", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var msg models.ContactMessage
	require.NoError(t, db.First(&msg, 1).Error)
	assert.True(t, msg.IsRead)

	// another user cannot mark the message
	foreign := newContactRouter(db, other.ID)
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/messages/1/read", nil)
	rec = httptest.NewRecorder()
	foreign.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
