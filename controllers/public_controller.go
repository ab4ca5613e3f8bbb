package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/services"
	"github.com/vizcard/vizcard/utils"
)

// PublicController serves the unauthenticated card page, the vCard download,
// and the public QR image. Every public card render records a view.
type PublicController struct {
	db        *gorm.DB
	analytics *services.AnalyticsService
	qr        *services.QRCodeService
}

// NewPublicController creates a PublicController.
func NewPublicController(db *gorm.DB, analytics *services.AnalyticsService, qr *services.QRCodeService) *PublicController {
	return &PublicController{db: db, analytics: analytics, qr: qr}
}

// ViewCard returns the public card payload and records the view. Tracking
// runs after the response is written so the render never waits on it, runs
// even when the payload comes from cache, and a tracking failure never
// fails the response.
func (pc *PublicController) ViewCard(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid card id")
		return
	}
	cardID := uint(id)

	defer pc.analytics.TrackCardView(cardID, services.RequestInfoFrom(ctx))

	cacheKey := publicCardCacheKey(cardID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		utils.Blob(ctx, "application/json", b)
		return
	}

	var card models.VisitingCard
	if err := pc.db.Preload("Template").First(&card, cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to retrieve card")
		return
	}

	payload := publicCardResponse(card, pc.qr.PublicCardURL(card.ID))
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 5*time.Minute)
	utils.Success(ctx, payload)
}

// DownloadVCard streams the card as a .vcf contact file.
func (pc *PublicController) DownloadVCard(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid card id")
		return
	}

	var card models.VisitingCard
	if err := pc.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to retrieve card")
		return
	}

	vcard := pc.qr.VCard(&card)
	name := card.FullName()
	if name == "" {
		name = fmt.Sprintf("card_%d", card.ID)
	}
	utils.Attachment(ctx, name+".vcf", "text/vcard; charset=utf-8", []byte(vcard))
}

// QRCode streams the public share QR image for a card.
func (pc *PublicController) QRCode(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid card id")
		return
	}

	var card models.VisitingCard
	if err := pc.db.First(&card, id).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
		return
	}

	png, err := pc.qr.CardQRCode(card.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to generate qr code")
		return
	}
	utils.Blob(ctx, "image/png", png)
}

func publicCardResponse(card models.VisitingCard, shareURL string) gin.H {
	return gin.H{
		"id":                  card.ID,
		"full_name":           card.FullName(),
		"first_name":          card.FirstName,
		"last_name":           card.LastName,
		"email":               card.Email,
		"phone":               card.Phone,
		"company":             card.Company,
		"address":             card.Address,
		"linkedin":            card.LinkedIn,
		"instagram":           card.Instagram,
		"twitter":             card.Twitter,
		"facebook":            card.Facebook,
		"website":             card.Website,
		"job_title":           card.JobTitle,
		"skills":              card.Skills,
		"languages":           card.Languages,
		"availability_status": card.AvailabilityStatus,
		"primary_color":       card.PrimaryColor,
		"secondary_color":     card.SecondaryColor,
		"font_family":         card.FontFamily,
		"card_orientation":    card.CardOrientation,
		"logo_path":           card.LogoPath,
		"template":            card.Template,
		"share_url":           shareURL,
	}
}
