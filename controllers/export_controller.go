package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// ExportController streams an owned card as a downloadable PDF or PNG.
type ExportController struct {
	exports *services.ExportService
}

// NewExportController creates an ExportController.
func NewExportController(exports *services.ExportService) *ExportController {
	return &ExportController{exports: exports}
}

// ExportPDF downloads the card rendered as a PDF document.
func (ec *ExportController) ExportPDF(ctx *gin.Context) {
	ec.export(ctx, "application/pdf", ec.exports.CardPDF)
}

// ExportPNG downloads the card rendered as a PNG image.
func (ec *ExportController) ExportPNG(ctx *gin.Context) {
	ec.export(ctx, "image/png", ec.exports.CardPNG)
}

func (ec *ExportController) export(ctx *gin.Context, contentType string, render func(userID, cardID uint) ([]byte, string, error)) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid card id")
		return
	}

	data, fileName, err := render(userID, uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
			return
		}
		utils.Sugar.Errorf("card export failed card_id=%d err=%v", id, err)
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to export card")
		return
	}

	utils.Attachment(ctx, fileName, contentType, data)
}
