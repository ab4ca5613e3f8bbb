package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/config"
	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// CardController handles the owner-facing card CRUD, logo upload, and QR endpoints.
type CardController struct {
	db *gorm.DB
	qr *services.QRCodeService
}

// NewCardController creates a CardController.
func NewCardController(db *gorm.DB, qr *services.QRCodeService) *CardController {
	return &CardController{db: db, qr: qr}
}

// cardRequest carries every editable card field. Pointer-free on purpose:
// updates replace the full field set, mirroring the edit form submit.
type cardRequest struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email" binding:"required,email"`
	Phone              string `json:"phone"`
	Company            string `json:"company"`
	Address            string `json:"address"`
	LinkedIn           string `json:"linkedin"`
	Instagram          string `json:"instagram"`
	Twitter            string `json:"twitter"`
	Facebook           string `json:"facebook"`
	Website            string `json:"website"`
	JobTitle           string `json:"job_title"`
	Skills             string `json:"skills"`
	Languages          string `json:"languages"`
	AvailabilityStatus string `json:"availability_status"`
	PrimaryColor       string `json:"primary_color"`
	SecondaryColor     string `json:"secondary_color"`
	FontFamily         string `json:"font_family"`
	CardOrientation    string `json:"card_orientation"`
	TemplateID         uint   `json:"template_id" binding:"required"`
}

func (r *cardRequest) sanitize() {
	r.FirstName = utils.Sanitize(strings.TrimSpace(r.FirstName))
	r.LastName = utils.Sanitize(strings.TrimSpace(r.LastName))
	r.Company = utils.Sanitize(strings.TrimSpace(r.Company))
	r.Address = utils.Sanitize(strings.TrimSpace(r.Address))
	r.JobTitle = utils.Sanitize(strings.TrimSpace(r.JobTitle))
	r.Skills = utils.Sanitize(strings.TrimSpace(r.Skills))
	r.Languages = utils.Sanitize(strings.TrimSpace(r.Languages))
	r.AvailabilityStatus = utils.Sanitize(strings.TrimSpace(r.AvailabilityStatus))
}

func (r *cardRequest) apply(card *models.VisitingCard) {
	card.FirstName = r.FirstName
	card.LastName = r.LastName
	card.Email = strings.TrimSpace(r.Email)
	card.Phone = strings.TrimSpace(r.Phone)
	card.Company = r.Company
	card.Address = r.Address
	card.LinkedIn = strings.TrimSpace(r.LinkedIn)
	card.Instagram = strings.TrimSpace(r.Instagram)
	card.Twitter = strings.TrimSpace(r.Twitter)
	card.Facebook = strings.TrimSpace(r.Facebook)
	card.Website = strings.TrimSpace(r.Website)
	card.JobTitle = r.JobTitle
	card.Skills = r.Skills
	card.Languages = r.Languages
	card.AvailabilityStatus = r.AvailabilityStatus
	card.PrimaryColor = strings.TrimSpace(r.PrimaryColor)
	card.SecondaryColor = strings.TrimSpace(r.SecondaryColor)
	card.FontFamily = strings.TrimSpace(r.FontFamily)
	card.CardOrientation = strings.TrimSpace(r.CardOrientation)
	card.TemplateID = r.TemplateID
}

// ListCards returns all cards owned by the authenticated user.
func (cc *CardController) ListCards(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var cards []models.VisitingCard
	if err := cc.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&cards).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to retrieve cards")
		return
	}

	utils.Success(ctx, gin.H{"items": cards, "total": len(cards)})
}

// GetCard returns one card owned by the authenticated user.
func (cc *CardController) GetCard(ctx *gin.Context) {
	card, ok := cc.ownedCard(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, card)
}

// CreateCard creates a card for the authenticated user.
func (cc *CardController) CreateCard(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var req cardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	req.sanitize()

	var tpl models.Template
	if err := cc.db.First(&tpl, req.TemplateID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "unknown template")
		return
	}

	card := models.VisitingCard{UserID: userID}
	req.apply(&card)

	if err := cc.db.Create(&card).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create card")
		return
	}

	utils.Success(ctx, card)
}

// UpdateCard replaces the editable fields of an owned card.
func (cc *CardController) UpdateCard(ctx *gin.Context) {
	card, ok := cc.ownedCard(ctx)
	if !ok {
		return
	}

	var req cardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}
	req.sanitize()

	var tpl models.Template
	if err := cc.db.First(&tpl, req.TemplateID).Error; err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "unknown template")
		return
	}

	req.apply(card)
	if err := cc.db.Save(card).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to update card")
		return
	}

	utils.CacheDelete(publicCardCacheKey(card.ID))
	utils.Success(ctx, card)
}

// DeleteCard removes an owned card. View log rows are kept for history.
func (cc *CardController) DeleteCard(ctx *gin.Context) {
	card, ok := cc.ownedCard(ctx)
	if !ok {
		return
	}

	if err := cc.db.Delete(card).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to delete card")
		return
	}

	utils.CacheDelete(publicCardCacheKey(card.ID))
	utils.Success(ctx, gin.H{"message": "card deleted"})
}

// UploadLogo stores a logo image for an owned card and records its path.
func (cc *CardController) UploadLogo(ctx *gin.Context) {
	card, ok := cc.ownedCard(ctx)
	if !ok {
		return
	}

	file, header, err := ctx.Request.FormFile("logo")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
		return
	}
	defer file.Close()

	cfg := config.Get()
	maxSize := int64(cfg.MaxUploadMB) * 1024 * 1024
	if header.Size > 0 && header.Size > maxSize {
		utils.Error(ctx, http.StatusBadRequest, 40031, fmt.Sprintf("file size exceeds %dMB", cfg.MaxUploadMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
	default:
		utils.Error(ctx, http.StatusBadRequest, 40032, "unsupported image type")
		return
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create upload directory")
		return
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(cfg.UploadDir, name)
	out, err := os.Create(dstPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to save file")
		return
	}
	defer out.Close()

	lr := &io.LimitedReader{R: file, N: maxSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil || written > maxSize {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to write file")
		return
	}

	old := card.LogoPath
	card.LogoPath = "/" + filepath.ToSlash(dstPath)
	if err := cc.db.Model(card).Update("logo_path", card.LogoPath).Error; err != nil {
		_ = os.Remove(dstPath)
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to update card")
		return
	}
	if old != "" {
		_ = os.Remove(strings.TrimPrefix(old, "/"))
	}

	utils.CacheDelete(publicCardCacheKey(card.ID))
	utils.Success(ctx, gin.H{"logo_path": card.LogoPath})
}

// QRCode streams a QR code PNG for an owned card. By default the code points
// at the public page; ?content=vcard embeds the vCard payload instead.
// ?size=N picks the edge length within sane bounds.
func (cc *CardController) QRCode(ctx *gin.Context) {
	card, ok := cc.ownedCard(ctx)
	if !ok {
		return
	}

	data := cc.qr.PublicCardURL(card.ID)
	if ctx.Query("content") == "vcard" {
		data = cc.qr.VCard(card)
	}
	size := 0
	if v := ctx.Query("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			size = n
		}
	}

	png, err := cc.qr.GeneratePNGSized(data, size)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to generate qr code")
		return
	}

	if ctx.Query("download") == "1" {
		utils.Attachment(ctx, fmt.Sprintf("card_%d_qr.png", card.ID), "image/png", png)
		return
	}
	utils.Blob(ctx, "image/png", png)
}

// ListTemplates returns the selectable card templates.
func (cc *CardController) ListTemplates(ctx *gin.Context) {
	var templates []models.Template
	if err := cc.db.Order("id").Find(&templates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to retrieve templates")
		return
	}
	utils.Success(ctx, gin.H{"items": templates})
}

// ownedCard loads the :id card and verifies the requester owns it. Writes the
// error response itself when the lookup fails.
func (cc *CardController) ownedCard(ctx *gin.Context) (*models.VisitingCard, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return nil, false
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid card id")
		return nil, false
	}

	var card models.VisitingCard
	if err := cc.db.Where("id = ? AND user_id = ?", id, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to retrieve card")
		}
		return nil, false
	}
	return &card, true
}

func publicCardCacheKey(cardID uint) string {
	return fmt.Sprintf("cache:card:public:%d", cardID)
}
