package services

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizcard/vizcard/models"
)

func newTestBatchService(t *testing.T) (*BatchQRService, models.VisitingCard) {
	db := setupTestDB(t)
	card := createTestCard(t, db, 0)
	qr := NewQRCodeService("https://cards.example.com", 128)
	svc := NewBatchQRService(db, qr)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, card
}

func TestBatchGenerateMixedResults(t *testing.T) {
	svc, card := newTestBatchService(t)

	results := svc.Generate(card.UserID, []uint{card.ID, 9999})
	require.Len(t, results, 2)

	assert.True(t, results[0].Success)
	assert.Equal(t, card.ID, results[0].CardID)
	assert.Equal(t, "Ada Lovelace", results[0].CardName)
	assert.NotEmpty(t, results[0].PNG)

	assert.False(t, results[1].Success)
	assert.Equal(t, uint(9999), results[1].CardID)
	assert.Equal(t, "card not found", results[1].Error)
}

func TestBatchGenerateRejectsForeignCards(t *testing.T) {
	svc, card := newTestBatchService(t)

	results := svc.Generate(card.UserID+1, []uint{card.ID})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
}

func TestBatchExportZip(t *testing.T) {
	svc, card := newTestBatchService(t)

	archive, fileName, err := svc.ExportZip(card.UserID, []uint{card.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, "QRCodes_Batch_20260310_120000.zip", fileName)

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "Ada_Lovelace_1.png")
	assert.Contains(t, names, "batch_summary.txt")

	for _, f := range zr.File {
		if f.Name != "batch_summary.txt" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)

		summary := string(body)
		assert.True(t, strings.Contains(summary, "Total Cards: 2"))
		assert.True(t, strings.Contains(summary, "Successful: 1"))
		assert.True(t, strings.Contains(summary, "Failed: 1"))
	}
}
