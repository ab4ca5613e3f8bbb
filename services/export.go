package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gorm.io/gorm"

	"github.com/vizcard/vizcard/models"
)

const (
	exportPNGWidth  = 800
	exportPNGHeight = 500
	exportQRSize    = 100
)

// exportPalette is the color set a template renders with in exported files.
type exportPalette struct {
	background color.RGBA
	text       color.RGBA
	accent     color.RGBA
}

var exportPalettes = map[string]exportPalette{
	"Classic Blue": {
		background: color.RGBA{R: 52, G: 84, B: 150, A: 255},
		text:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		accent:     color.RGBA{R: 173, G: 216, B: 230, A: 255},
	},
	"Minimal White": {
		background: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		text:       color.RGBA{R: 0, G: 0, B: 0, A: 255},
		accent:     color.RGBA{R: 128, G: 128, B: 128, A: 255},
	},
	"Modern Dark": {
		background: color.RGBA{R: 33, G: 37, B: 41, A: 255},
		text:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
		accent:     color.RGBA{R: 255, G: 215, B: 0, A: 255},
	},
}

func paletteFor(templateName string) exportPalette {
	if p, ok := exportPalettes[templateName]; ok {
		return p
	}
	return exportPalettes["Minimal White"]
}

// ExportService renders an owned card into downloadable PDF and PNG files,
// each carrying the card details plus the share QR code.
type ExportService struct {
	db  *gorm.DB
	qr  *QRCodeService
	now func() time.Time
}

// NewExportService creates an ExportService.
func NewExportService(db *gorm.DB, qr *QRCodeService) *ExportService {
	return &ExportService{db: db, qr: qr, now: time.Now}
}

// CardPDF renders the card as an A4 landscape PDF. Returns the file bytes
// and the download filename. A card the user does not own reports
// gorm.ErrRecordNotFound.
func (s *ExportService) CardPDF(userID, cardID uint) ([]byte, string, error) {
	card, err := s.loadCard(userID, cardID)
	if err != nil {
		return nil, "", err
	}
	qrPNG, err := s.qr.GeneratePNGSized(s.qr.PublicCardURL(card.ID), 256)
	if err != nil {
		return nil, "", fmt.Errorf("render qr for card %d: %w", card.ID, err)
	}

	out, err := renderCardPDF(card, qrPNG)
	if err != nil {
		return nil, "", fmt.Errorf("render pdf for card %d: %w", card.ID, err)
	}
	return out, exportFileName(card, s.now(), "pdf"), nil
}

// CardPNG renders the card as an 800x500 PNG image.
func (s *ExportService) CardPNG(userID, cardID uint) ([]byte, string, error) {
	card, err := s.loadCard(userID, cardID)
	if err != nil {
		return nil, "", err
	}
	qrPNG, err := s.qr.GeneratePNGSized(s.qr.PublicCardURL(card.ID), exportQRSize)
	if err != nil {
		return nil, "", fmt.Errorf("render qr for card %d: %w", card.ID, err)
	}

	out, err := renderCardPNG(card, qrPNG)
	if err != nil {
		return nil, "", fmt.Errorf("render png for card %d: %w", card.ID, err)
	}
	return out, exportFileName(card, s.now(), "png"), nil
}

func (s *ExportService) loadCard(userID, cardID uint) (*models.VisitingCard, error) {
	var card models.VisitingCard
	err := s.db.Preload("Template").
		Where("id = ? AND user_id = ?", cardID, userID).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func exportFileName(card *models.VisitingCard, now time.Time, ext string) string {
	name := strings.ReplaceAll(card.FullName(), " ", "_")
	if name == "" {
		name = fmt.Sprintf("card_%d", card.ID)
	}
	return fmt.Sprintf("VisitingCard_%s_%s.%s", name, now.Format("20060102"), ext)
}

// contactLines builds the labelled contact rows, skipping empty fields.
// Email always prints so the exported card is never contactless.
func contactLines(card *models.VisitingCard) []string {
	lines := []string{"Email: " + card.Email}
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Phone", card.Phone)
	add("LinkedIn", card.LinkedIn)
	add("Instagram", card.Instagram)
	add("Twitter", card.Twitter)
	add("Facebook", card.Facebook)
	add("Website", card.Website)
	add("Address", card.Address)
	return lines
}

func detailLines(card *models.VisitingCard) []string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Skills", card.Skills)
	add("Languages", card.Languages)
	add("Status", card.AvailabilityStatus)
	return lines
}

func renderCardPDF(card *models.VisitingCard, qrPNG []byte) ([]byte, error) {
	p := paletteFor(card.Template.Name)
	templateName := card.Template.Name
	if templateName == "" {
		templateName = "Professional"
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Digital Visiting Card - "+templateName, "", 1, "C", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(int(p.accent.R), int(p.accent.G), int(p.accent.B))
	pdf.CellFormat(0, 12, card.FullName(), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	if card.JobTitle != "" {
		pdf.SetFont("Arial", "I", 14)
		pdf.CellFormat(0, 8, card.JobTitle, "", 1, "L", false, 0, "")
	}
	if card.Company != "" {
		pdf.SetFont("Arial", "I", 16)
		pdf.CellFormat(0, 9, card.Company, "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	for _, line := range contactLines(card) {
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
	for _, line := range detailLines(card) {
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	opt := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("share-qr", opt, bytes.NewReader(qrPNG))
	pdf.ImageOptions("share-qr", 230, 40, 45, 45, false, opt, 0, "")
	pdf.SetXY(230, 87)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(45, 5, "Scan to save contact", "", 0, "C", false, 0, "")

	pdf.SetY(-25)
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(0, 5, "Generated by VizCard - Digital Visiting Card Generator", "", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderCardPNG(card *models.VisitingCard, qrPNG []byte) ([]byte, error) {
	p := paletteFor(card.Template.Name)

	img := image.NewRGBA(image.Rect(0, 0, exportPNGWidth, exportPNGHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: p.background}, image.Point{}, draw.Src)

	x, y := 50, 60
	drawText(img, x, y, p.text, card.FullName())
	y += 40

	if card.JobTitle != "" {
		drawText(img, x, y, p.accent, card.JobTitle)
		y += 30
	}
	if card.Company != "" {
		drawText(img, x, y, p.accent, card.Company)
		y += 30
	}
	y += 20

	for _, line := range contactLines(card) {
		drawText(img, x, y, p.text, line)
		y += 25
	}
	y += 10
	for _, line := range detailLines(card) {
		drawText(img, x, y, p.text, line)
		y += 20
	}

	if len(qrPNG) > 0 {
		qrImg, err := png.Decode(bytes.NewReader(qrPNG))
		if err != nil {
			return nil, err
		}
		target := image.Rect(exportPNGWidth-150, 50, exportPNGWidth-150+exportQRSize, 50+exportQRSize)
		draw.Draw(img, target, qrImg, qrImg.Bounds().Min, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawText(img *image.RGBA, x, y int, c color.Color, text string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
