package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/config"
	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// AdminController provides platform-wide statistics for operators.
type AdminController struct {
	db *gorm.DB
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{db: db}
}

// GetStats returns aggregate statistics for the whole platform.
func (s *AdminController) GetStats(ctx *gin.Context) {
	if !s.isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin access required")
		return
	}

	var userCount int64
	var cardCount int64
	var viewCount int64
	var messageCount int64
	var viewsToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.VisitingCard{}).Count(&cardCount).Error; err != nil {
		cardCount = 0
	}

	if err := s.db.Model(&models.CardView{}).Count(&viewCount).Error; err != nil {
		viewCount = 0
	}

	if err := s.db.Model(&models.ContactMessage{}).Count(&messageCount).Error; err != nil {
		messageCount = 0
	}

	startOfToday := services.StartOfDay(time.Now())
	if err := s.db.Model(&models.CardView{}).
		Where("viewed_at >= ?", startOfToday).
		Count(&viewsToday).Error; err != nil {
		viewsToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":    userCount,
		"card_count":    cardCount,
		"view_count":    viewCount,
		"message_count": messageCount,
		"views_today":   viewsToday,
	})
}

// ListEmailLog returns the most recent notification delivery attempts.
func (s *AdminController) ListEmailLog(ctx *gin.Context) {
	if !s.isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "admin access required")
		return
	}

	var entries []models.EmailLog
	if err := s.db.Order("sent_at DESC").Limit(100).Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to retrieve email log")
		return
	}

	utils.Success(ctx, gin.H{"items": entries})
}

func (s *AdminController) isAdmin(ctx *gin.Context) bool {
	v, ok := ctx.Get(middleware.ContextEmailKey)
	if !ok {
		return false
	}
	email, _ := v.(string)
	for _, admin := range config.Get().AdminEmails {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}
