package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// BatchController exposes bulk QR generation and the zip export.
type BatchController struct {
	batch *services.BatchQRService
}

// NewBatchController creates a BatchController.
func NewBatchController(batch *services.BatchQRService) *BatchController {
	return &BatchController{batch: batch}
}

type batchRequest struct {
	CardIDs []uint `json:"card_ids" binding:"required,min=1,max=100"`
}

// Generate reports per-card success or failure for a batch of QR codes.
func (bc *BatchController) Generate(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var req batchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	results := bc.batch.Generate(userID, req.CardIDs)

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}

	utils.Success(ctx, gin.H{
		"results":    results,
		"total":      len(results),
		"successful": succeeded,
		"failed":     len(results) - succeeded,
	})
}

// Export streams a zip archive of QR code PNGs for the requested cards.
func (bc *BatchController) Export(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var req batchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	archive, fileName, err := bc.batch.ExportZip(userID, req.CardIDs)
	if err != nil {
		utils.Sugar.Errorf("batch export failed user_id=%d err=%v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to build export")
		return
	}

	utils.Attachment(ctx, fileName, "application/zip", archive)
}
