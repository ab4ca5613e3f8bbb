package services

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vizcard/vizcard/models"
	"github.com/vizcard/vizcard/utils"
)

// BatchQRResult is the outcome of generating one card's QR code in a batch.
// Failed entries carry an error message instead of PNG bytes.
type BatchQRResult struct {
	CardID      uint      `json:"card_id"`
	CardName    string    `json:"card_name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	PNG         []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BatchQRService generates QR codes for many cards at once and packs the
// results into a downloadable zip archive. One bad card id fails its own
// entry, never the batch.
type BatchQRService struct {
	db  *gorm.DB
	qr  *QRCodeService
	now func() time.Time
}

func NewBatchQRService(db *gorm.DB, qr *QRCodeService) *BatchQRService {
	return &BatchQRService{db: db, qr: qr, now: time.Now}
}

// Generate produces one result per requested card id, preserving input order.
// Only cards owned by userID are eligible; anything else reports "card not found".
func (s *BatchQRService) Generate(userID uint, cardIDs []uint) []BatchQRResult {
	results := make([]BatchQRResult, 0, len(cardIDs))
	for _, id := range cardIDs {
		results = append(results, s.generateOne(userID, id))
	}
	return results
}

func (s *BatchQRService) generateOne(userID, cardID uint) BatchQRResult {
	result := BatchQRResult{CardID: cardID, GeneratedAt: s.now()}

	var card models.VisitingCard
	err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Error = "card not found"
		} else {
			utils.Sugar.Errorf("batch qr lookup failed card_id=%d err=%v", cardID, err)
			result.Error = "lookup failed"
		}
		return result
	}

	png, err := s.qr.CardQRCode(card.ID)
	if err != nil {
		utils.Sugar.Errorf("batch qr encode failed card_id=%d err=%v", cardID, err)
		result.Error = "qr generation failed"
		return result
	}

	result.CardName = card.FullName()
	result.Company = card.Company
	result.Success = true
	result.PNG = png
	return result
}

// ExportZip generates QR codes for the given cards and returns a zip archive
// with one PNG per successful card plus a plain-text summary, along with the
// suggested download file name.
func (s *BatchQRService) ExportZip(userID uint, cardIDs []uint) ([]byte, string, error) {
	results := s.Generate(userID, cardIDs)
	now := s.now()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	succeeded := 0
	for _, r := range results {
		if !r.Success {
			continue
		}
		succeeded++
		name := fmt.Sprintf("%s_%d.png", strings.ReplaceAll(r.CardName, " ", "_"), r.CardID)
		w, err := zw.Create(name)
		if err != nil {
			return nil, "", fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(r.PNG); err != nil {
			return nil, "", fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	summary, err := zw.Create("batch_summary.txt")
	if err != nil {
		return nil, "", fmt.Errorf("create batch summary: %w", err)
	}
	fmt.Fprintf(summary, "QR Code Batch Export Summary\n")
	fmt.Fprintf(summary, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(summary, "Total Cards: %d\n", len(cardIDs))
	fmt.Fprintf(summary, "Successful: %d\n", succeeded)
	fmt.Fprintf(summary, "Failed: %d\n\n", len(results)-succeeded)
	for _, r := range results {
		if r.Success {
			fmt.Fprintf(summary, "+ %s (%d) - Success\n", r.CardName, r.CardID)
		} else {
			fmt.Fprintf(summary, "- card %d - %s\n", r.CardID, r.Error)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize zip: %w", err)
	}

	fileName := fmt.Sprintf("QRCodes_Batch_%s.zip", now.Format("20060102_150405"))
	return buf.Bytes(), fileName, nil
}
