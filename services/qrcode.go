package services

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/vizcard/vizcard/models"
)

// QRCodeService renders share QR codes and vCard payloads for cards.
type QRCodeService struct {
	baseURL string
	size    int
}

// NewQRCodeService builds a generator for the given public base URL.
// Size is the PNG edge length in pixels; zero selects the default.
func NewQRCodeService(baseURL string, size int) *QRCodeService {
	if size <= 0 {
		size = 512
	}
	return &QRCodeService{baseURL: strings.TrimRight(baseURL, "/"), size: size}
}

// PublicCardURL is the shareable link the QR code resolves to.
func (s *QRCodeService) PublicCardURL(cardID uint) string {
	return fmt.Sprintf("%s/card/%d", s.baseURL, cardID)
}

// GeneratePNG encodes arbitrary data as a QR code PNG at the configured size.
func (s *QRCodeService) GeneratePNG(data string) ([]byte, error) {
	return s.GeneratePNGSized(data, s.size)
}

// GeneratePNGSized encodes data at an explicit edge length, clamped to a
// sane range so a crafted size parameter cannot exhaust memory.
func (s *QRCodeService) GeneratePNGSized(data string, size int) ([]byte, error) {
	if size < 64 || size > 1024 {
		size = s.size
	}
	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// CardQRCode renders the QR code PNG for a card's public page.
func (s *QRCodeService) CardQRCode(cardID uint) ([]byte, error) {
	return s.GeneratePNG(s.PublicCardURL(cardID))
}

// VCard builds a vCard 3.0 payload from the card, skipping empty fields.
// Social handles are normalized into profile URLs, professional details go
// into a single NOTE line.
func (s *QRCodeService) VCard(card *models.VisitingCard) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\nVERSION:3.0\n")

	if card.FirstName != "" && card.LastName != "" {
		fmt.Fprintf(&b, "N:%s;%s;;;\n", card.LastName, card.FirstName)
		fmt.Fprintf(&b, "FN:%s %s\n", card.FirstName, card.LastName)
	} else if name := card.FullName(); name != "" {
		fmt.Fprintf(&b, "FN:%s\n", name)
	}

	if card.Company != "" {
		fmt.Fprintf(&b, "ORG:%s\n", card.Company)
	}
	if card.JobTitle != "" {
		fmt.Fprintf(&b, "TITLE:%s\n", card.JobTitle)
	}
	if card.Email != "" {
		fmt.Fprintf(&b, "EMAIL;TYPE=WORK:%s\n", card.Email)
	}
	if card.Phone != "" {
		fmt.Fprintf(&b, "TEL;TYPE=WORK,VOICE:%s\n", card.Phone)
	}
	if card.Address != "" {
		fmt.Fprintf(&b, "ADR;TYPE=WORK:;;%s;;;\n", card.Address)
	}

	if card.Website != "" {
		fmt.Fprintf(&b, "URL;TYPE=WORK:%s\n", card.Website)
	}
	if card.LinkedIn != "" {
		fmt.Fprintf(&b, "URL;TYPE=LinkedIn:%s\n", card.LinkedIn)
	}
	if card.Instagram != "" {
		fmt.Fprintf(&b, "URL;TYPE=Instagram:https://instagram.com/%s\n", strings.ReplaceAll(card.Instagram, "@", ""))
	}
	if card.Twitter != "" {
		fmt.Fprintf(&b, "URL;TYPE=Twitter:https://twitter.com/%s\n", strings.ReplaceAll(card.Twitter, "@", ""))
	}
	if card.Facebook != "" {
		fmt.Fprintf(&b, "URL;TYPE=Facebook:%s\n", card.Facebook)
	}

	var notes []string
	if card.Skills != "" {
		notes = append(notes, "Skills: "+card.Skills)
	}
	if card.Languages != "" {
		notes = append(notes, "Languages: "+card.Languages)
	}
	if card.AvailabilityStatus != "" {
		notes = append(notes, "Availability: "+card.AvailabilityStatus)
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, "NOTE:%s\n", strings.Join(notes, " | "))
	}

	b.WriteString("END:VCARD")
	return b.String()
}
