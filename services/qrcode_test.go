package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizcard/vizcard/models"
)

func TestPublicCardURL(t *testing.T) {
	svc := NewQRCodeService("https://cards.example.com/", 0)
	assert.Equal(t, "https://cards.example.com/card/42", svc.PublicCardURL(42))
}

func TestCardQRCodeIsPNG(t *testing.T) {
	svc := NewQRCodeService("https://cards.example.com", 256)
	png, err := svc.CardQRCode(42)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestGeneratePNGSizedClampsSize(t *testing.T) {
	svc := NewQRCodeService("https://cards.example.com", 128)

	for _, size := range []int{-1, 0, 63, 2048} {
		png, err := svc.GeneratePNGSized("hello", size)
		require.NoError(t, err, "size=%d", size)
		assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	}
}

func TestVCardFullCard(t *testing.T) {
	svc := NewQRCodeService("https://cards.example.com", 0)
	card := &models.VisitingCard{
		FirstName:          "Ada",
		LastName:           "Lovelace",
		Email:              "ada@example.com",
		Phone:              "+44 20 7946 0000",
		Company:            "Analytical Engines",
		Address:            "12 St James Square, London",
		JobTitle:           "Chief Engineer",
		Website:            "https://ada.example.com",
		LinkedIn:           "https://linkedin.com/in/ada",
		Instagram:          "@ada.codes",
		Twitter:            "@ada_codes",
		Skills:             "Mathematics, Programming",
		Languages:          "English, French",
		AvailabilityStatus: "Open to collaborations",
	}

	vcard := svc.VCard(card)

	assert.True(t, strings.HasPrefix(vcard, "BEGIN:VCARD\nVERSION:3.0\n"))
	assert.True(t, strings.HasSuffix(vcard, "END:VCARD"))
	assert.Contains(t, vcard, "N:Lovelace;Ada;;;")
	assert.Contains(t, vcard, "FN:Ada Lovelace")
	assert.Contains(t, vcard, "ORG:Analytical Engines")
	assert.Contains(t, vcard, "TITLE:Chief Engineer")
	assert.Contains(t, vcard, "EMAIL;TYPE=WORK:ada@example.com")
	assert.Contains(t, vcard, "TEL;TYPE=WORK,VOICE:+44 20 7946 0000")
	assert.Contains(t, vcard, "ADR;TYPE=WORK:;;12 St James Square, London;;;")
	// social handles lose their @ and become profile URLs
	assert.Contains(t, vcard, "URL;TYPE=Instagram:https://instagram.com/ada.codes")
	assert.Contains(t, vcard, "URL;TYPE=Twitter:https://twitter.com/ada_codes")
	assert.Contains(t, vcard, "NOTE:Skills: Mathematics, Programming | Languages: English, French | Availability: Open to collaborations")
}

func TestVCardSkipsEmptyFields(t *testing.T) {
	svc := NewQRCodeService("https://cards.example.com", 0)
	card := &models.VisitingCard{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	vcard := svc.VCard(card)

	assert.NotContains(t, vcard, "ORG:")
	assert.NotContains(t, vcard, "TEL;")
	assert.NotContains(t, vcard, "NOTE:")
	assert.Contains(t, vcard, "EMAIL;TYPE=WORK:ada@example.com")
}
