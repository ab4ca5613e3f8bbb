package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/services"
)

func newExportRouter(db *gorm.DB, userID uint) *gin.Engine {
	qr := services.NewQRCodeService("https://cards.example.com", 128)
	ec := NewExportController(services.NewExportService(db, qr))

	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		ctx.Set(middleware.ContextUserIDKey, userID)
		ctx.Next()
	})
	r.GET("/api/v1/cards/:id/export/pdf", ec.ExportPDF)
	r.GET("/api/v1/cards/:id/export/png", ec.ExportPNG)
	return r
}

func TestExportPDFDownload(t *testing.T) {
	db := setupControllerDB(t)
	card := seedCard(t, db)
	r := newExportRouter(db, card.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/1/export/pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "VisitingCard_Ada_Lovelace_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestExportPNGDownload(t *testing.T) {
	db := setupControllerDB(t)
	card := seedCard(t, db)
	r := newExportRouter(db, card.UserID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/1/export/png", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Disposition"), `.png"`))
}

func TestExportRejectsForeignOrMissingCard(t *testing.T) {
	db := setupControllerDB(t)
	card := seedCard(t, db)
	r := newExportRouter(db, card.UserID+1)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cards/1/export/pdf", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cards/abc/export/png", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
