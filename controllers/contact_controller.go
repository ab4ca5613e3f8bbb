package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/middleware"
	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/utils"
)

// ContactController handles the public contact form and the owner inbox.
type ContactController struct {
	db *gorm.DB
}

// NewContactController creates a ContactController.
func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{db: db}
}

// Submit accepts a public contact form for a card. The message is persisted
// first; the notification email to the card owner is best effort and its
// outcome lands in the email log, never in the HTTP response.
func (cc *ContactController) Submit(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid card id")
		return
	}

	type request struct {
		Name    string `json:"name" binding:"required,max=100"`
		Email   string `json:"email" binding:"required,email"`
		Phone   string `json:"phone" binding:"max=30"`
		Company string `json:"company" binding:"max=150"`
		Message string `json:"message" binding:"required,max=2000"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}

	var card models.VisitingCard
	if err := cc.db.Preload("User").First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "card not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to retrieve card")
		return
	}

	msg := models.ContactMessage{
		CardID:      card.ID,
		Name:        utils.Sanitize(strings.TrimSpace(req.Name)),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Company:     utils.Sanitize(strings.TrimSpace(req.Company)),
		Message:     utils.Sanitize(strings.TrimSpace(req.Message)),
		SubmittedAt: time.Now(),
	}
	if err := cc.db.Create(&msg).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to save message")
		return
	}

	go cc.notifyOwner(card, msg)

	utils.Success(ctx, gin.H{"message": "message sent"})
}

// notifyOwner emails the card owner about a new message and records the
// delivery outcome.
func (cc *ContactController) notifyOwner(card models.VisitingCard, msg models.ContactMessage) {
	recipient := card.User.Email
	if recipient == "" {
		recipient = card.Email
	}
	if recipient == "" {
		return
	}

	subject := "New Contact Form Submission - " + msg.Name
	body := fmt.Sprintf(
		"You received a new message through your card %q.\n\n"+
			"Name: %s\nEmail: %s\nPhone: %s\nCompany: %s\n\n%s\n",
		card.FullName(), msg.Name, msg.Email, msg.Phone, msg.Company, msg.Message)

	logEntry := models.EmailLog{
		CardID:    card.ID,
		Recipient: recipient,
		Subject:   subject,
		Status:    models.EmailStatusSent,
		SentAt:    time.Now(),
	}
	if err := utils.SendMail(recipient, subject, body); err != nil {
		utils.Sugar.Errorf("contact notification failed card_id=%d err=%v", card.ID, err)
		logEntry.Status = models.EmailStatusFailed
		logEntry.Error = err.Error()
	}
	if err := cc.db.Create(&logEntry).Error; err != nil {
		utils.Sugar.Errorf("email log write failed card_id=%d err=%v", card.ID, err)
	}
}

// Inbox lists the messages received across the user's cards, newest first.
func (cc *ContactController) Inbox(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	var messages []models.ContactMessage
	err := cc.db.
		Joins("JOIN visiting_cards ON visiting_cards.id = contact_messages.card_id").
		Where("visiting_cards.user_id = ?", userID).
		Order("contact_messages.submitted_at DESC").
		Find(&messages).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to retrieve messages")
		return
	}

	unread := 0
	for _, m := range messages {
		if !m.IsRead {
			unread++
		}
	}

	utils.Success(ctx, gin.H{"items": messages, "total": len(messages), "unread": unread})
}

// MarkRead flags one of the user's messages as read.
func (cc *ContactController) MarkRead(ctx *gin.Context) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "not authenticated")
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid message id")
		return
	}

	res := cc.db.Model(&models.ContactMessage{}).
		Where("id = ? AND card_id IN (?)",
			id,
			cc.db.Model(&models.VisitingCard{}).Select("id").Where("user_id = ?", userID)).
		Update("is_read", true)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to update message")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40403, "message not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "marked read"})
}
