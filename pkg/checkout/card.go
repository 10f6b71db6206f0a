package checkout

import "strings"

const (
	maxCardDigits   = 16
	maxExpiryDigits = 4
	maxCVCDigits    = 4
)

// CardFields are the card inputs as the customer typed them. Only presence is
// checked; the simulated processor accepts any filled-in card.
type CardFields struct {
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required"`
	Expiry string `json:"expiry" validate:"required"`
	CVC    string `json:"cvc" validate:"required"`
}

// AddressFields is the billing address collected with card payments.
type AddressFields struct {
	Line1 string `json:"line1" validate:"required"`
	City  string `json:"city" validate:"required"`
	State string `json:"state" validate:"required"`
	Zip   string `json:"zip" validate:"required"`
}

// NormalizeCard applies the payment form's input formatting to every card field.
func NormalizeCard(card CardFields) CardFields {
	return CardFields{
		Name:   strings.TrimSpace(card.Name),
		Number: FormatCardNumber(card.Number),
		Expiry: FormatExpiry(card.Expiry),
		CVC:    FormatCVC(card.CVC),
	}
}

// NormalizeAddress trims every address field.
func NormalizeAddress(addr AddressFields) AddressFields {
	return AddressFields{
		Line1: strings.TrimSpace(addr.Line1),
		City:  strings.TrimSpace(addr.City),
		State: strings.TrimSpace(addr.State),
		Zip:   strings.TrimSpace(addr.Zip),
	}
}

// FormatCardNumber keeps at most 16 digits and groups them by four: "4242 4242 4242 4242".
func FormatCardNumber(raw string) string {
	digits := digitsOnly(raw, maxCardDigits)
	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// FormatExpiry renders "MMYY" style input as "MM/YY". Fewer than two digits are returned as is.
func FormatExpiry(raw string) string {
	digits := digitsOnly(raw, maxExpiryDigits)
	if len(digits) < 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

// FormatCVC keeps at most four digits.
func FormatCVC(raw string) string {
	return digitsOnly(raw, maxCVCDigits)
}

// CardDigits strips the grouping spaces from a formatted number.
func CardDigits(number string) string {
	return digitsOnly(number, 0)
}

// LastFour returns the final four digits of a card number, or "" when shorter.
func LastFour(number string) string {
	digits := CardDigits(number)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}

func digitsOnly(raw string, limit int) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if limit > 0 && b.Len() >= limit {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}
