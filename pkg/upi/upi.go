// Package upi builds UPI payment intents and their QR code images.
package upi

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/sangkips/pharmacy-pos-api/pkg/money"
)

// DefaultCurrency is used when a payee has no currency configured.
const DefaultCurrency = "INR"

// QRSize is the edge length in pixels of the generated QR image.
const QRSize = 256

// ErrNotConfigured is returned when the payee VPA or name is missing.
var ErrNotConfigured = errors.New("upi: payee not configured")

// Payee identifies who receives the payment.
type Payee struct {
	VPA      string
	Name     string
	Currency string
}

// Configured reports whether the payee can receive payments.
func (p Payee) Configured() bool {
	return strings.TrimSpace(p.VPA) != "" && strings.TrimSpace(p.Name) != ""
}

// Reference is the payment artifact handed back with a committed bill.
type Reference struct {
	URI      string `json:"uri"`
	Note     string `json:"note"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	// QRImage is a base64 encoded PNG. Empty when encoding failed.
	QRImage string `json:"qr_image,omitempty"`
}

// Note returns the transaction note printed on the intent for a bill.
func Note(billID uint) string {
	return fmt.Sprintf("Bill %d", billID)
}

// BuildURI renders the upi://pay intent for the given amount.
func BuildURI(payee Payee, amountCents int64, note string) string {
	currency := payee.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	// Order of parameters matters to a few older PSP apps.
	params := []string{
		"pa=" + url.QueryEscape(strings.TrimSpace(payee.VPA)),
		"pn=" + url.QueryEscape(strings.TrimSpace(payee.Name)),
		"am=" + money.Format(amountCents),
		"cu=" + url.QueryEscape(currency),
		"tn=" + url.QueryEscape(note),
	}
	return "upi://pay?" + strings.Join(params, "&")
}

// Generate builds the payment reference for a bill. The QR image is best
// effort: on encoding failure the URI is still returned.
func Generate(payee Payee, amountCents int64, billID uint) (*Reference, error) {
	if !payee.Configured() {
		return nil, ErrNotConfigured
	}

	currency := payee.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	note := Note(billID)
	uri := BuildURI(payee, amountCents, note)

	ref := &Reference{
		URI:      uri,
		Note:     note,
		Amount:   money.Format(amountCents),
		Currency: currency,
	}

	png, err := qrcode.Encode(uri, qrcode.Medium, QRSize)
	if err == nil {
		ref.QRImage = base64.StdEncoding.EncodeToString(png)
	}
	return ref, nil
}
