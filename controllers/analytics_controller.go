package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// AnalyticsController exposes the owner dashboards built from the view log.
type AnalyticsController struct {
	db        *gorm.DB
	analytics *services.AnalyticsService
}

// NewAnalyticsController creates an AnalyticsController.
func NewAnalyticsController(db *gorm.DB, analytics *services.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{db: db, analytics: analytics}
}

// Dashboard returns aggregate statistics across all of the user's cards.
func (ac *AnalyticsController) Dashboard(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	stats, err := ac.analytics.UserStats(userID)
	if err != nil {
		utils.Sugar.Errorf("user stats failed user_id=%d err=%v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to compute statistics")
		return
	}

	utils.Success(ctx, stats)
}

// CardStats returns the statistics bundle for one owned card.
func (ac *AnalyticsController) CardStats(ctx *gin.Context) {
	cardID, ok := ac.ownedCardID(ctx)
	if !ok {
		return
	}

	stats, err := ac.analytics.CardStats(cardID)
	if err != nil {
		utils.Sugar.Errorf("card stats failed card_id=%d err=%v", cardID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to compute statistics")
		return
	}

	utils.Success(ctx, stats)
}

// CardTrend returns the per-day view series for one owned card.
// Accepts ?days=N; out-of-range values fall back to the configured default.
func (ac *AnalyticsController) CardTrend(ctx *gin.Context) {
	cardID, ok := ac.ownedCardID(ctx)
	if !ok {
		return
	}

	days := 0
	if v := ctx.Query("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}

	trend, err := ac.analytics.CardTrend(cardID, days)
	if err != nil {
		utils.Sugar.Errorf("card trend failed card_id=%d err=%v", cardID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to compute trend")
		return
	}

	utils.Success(ctx, gin.H{"card_id": cardID, "trend": trend})
}

// ownedCardID resolves :id and verifies ownership without loading full stats.
func (ac *AnalyticsController) ownedCardID(ctx *gin.Context) (uint, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return 0, false
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid card id")
		return 0, false
	}

	var card models.VisitingCard
	if err := ac.db.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to retrieve card")
		}
		return 0, false
	}
	return card.ID, true
}
