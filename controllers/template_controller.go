package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/utils"
)

// TemplateController manages per-user custom card layouts.
type TemplateController struct {
	db *gorm.DB
}

// NewTemplateController creates a TemplateController.
func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{db: db}
}

type customTemplateRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	HTMLContent string `json:"html_content" binding:"required"`
	CSSContent  string `json:"css_content"`
	IsActive    *bool  `json:"is_active"`
}

// ListCustom returns the requester's custom templates.
func (tc *TemplateController) ListCustom(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var templates []models.CustomTemplate
	if err := tc.db.Where("user_id = ?", userID).Order("id").Find(&templates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to retrieve templates")
		return
	}
	utils.Success(ctx, gin.H{"items": templates})
}

// CreateCustom saves a new custom template for the requester.
func (tc *TemplateController) CreateCustom(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var req customTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	tpl := models.CustomTemplate{
		UserID:      userID,
		Name:        utils.Sanitize(req.Name),
		HTMLContent: req.HTMLContent,
		CSSContent:  req.CSSContent,
		IsActive:    true,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := tc.db.Create(&tpl).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to save template")
		return
	}
	utils.Success(ctx, tpl)
}

// UpdateCustom replaces an owned custom template's content.
func (tc *TemplateController) UpdateCustom(ctx *gin.Context) {
	tpl, ok := tc.ownedTemplate(ctx)
	if !ok {
		return
	}

	var req customTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	tpl.Name = utils.Sanitize(req.Name)
	tpl.HTMLContent = req.HTMLContent
	tpl.CSSContent = req.CSSContent
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := tc.db.Save(tpl).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to save template")
		return
	}
	utils.Success(ctx, tpl)
}

// DeleteCustom removes an owned custom template.
func (tc *TemplateController) DeleteCustom(ctx *gin.Context) {
	tpl, ok := tc.ownedTemplate(ctx)
	if !ok {
		return
	}

	if err := tc.db.Delete(tpl).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to delete template")
		return
	}
	utils.Success(ctx, gin.H{"deleted": tpl.ID})
}

func (tc *TemplateController) ownedTemplate(ctx *gin.Context) (*models.CustomTemplate, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return nil, false
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid template id")
		return nil, false
	}

	var tpl models.CustomTemplate
	if err := tc.db.Where("id = ? AND user_id = ?", id, userID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "template not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to retrieve template")
		}
		return nil, false
	}
	return &tpl, true
}
