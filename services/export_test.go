package services

import (
	"bytes"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestExportService(db *gorm.DB, now time.Time) *ExportService {
	return &ExportService{
		db:  db,
		qr:  NewQRCodeService("https://cards.example.com", 128),
		now: func() time.Time { return now },
	}
}

func TestCardPDFProducesDocument(t *testing.T) {
	db := setupTestDB(t)
	card := createTestCard(t, db, 0)
	svc := newTestExportService(db, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	data, fileName, err := svc.CardPDF(card.UserID, card.ID)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "pdf header missing")
	assert.Equal(t, "VisitingCard_Ada_Lovelace_20260310.pdf", fileName)
}

func TestCardPNGUsesTemplatePalette(t *testing.T) {
	db := setupTestDB(t)
	card := createTestCard(t, db, 0)
	svc := newTestExportService(db, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	data, fileName, err := svc.CardPNG(card.UserID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "VisitingCard_Ada_Lovelace_20260310.png", fileName)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 800, 500), img.Bounds())

	// The test card uses template 1, Classic Blue.
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(52), r>>8)
	assert.Equal(t, uint32(84), g>>8)
	assert.Equal(t, uint32(150), b>>8)
}

func TestExportRejectsForeignCard(t *testing.T) {
	db := setupTestDB(t)
	card := createTestCard(t, db, 0)
	svc := newTestExportService(db, time.Now())

	_, _, err := svc.CardPDF(card.UserID+1, card.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, _, err = svc.CardPNG(card.UserID+1, card.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
