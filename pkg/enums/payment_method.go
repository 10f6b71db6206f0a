package enums

import "fmt"

// PaymentMethod describes how the customer pays at checkout.
type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodApplePay  PaymentMethod = "apple_pay"
	PaymentMethodGooglePay PaymentMethod = "google_pay"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCard,
	PaymentMethodApplePay,
	PaymentMethodGooglePay,
}

var walletLabels = map[PaymentMethod]string{
	PaymentMethodApplePay:  "Apple Pay",
	PaymentMethodGooglePay: "Google Pay",
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsWallet reports whether the method is a wallet (no card fields required).
func (p PaymentMethod) IsWallet() bool {
	_, ok := walletLabels[p]
	return ok
}

// Label returns the display label stored on subscriptions; empty for cards.
func (p PaymentMethod) Label() string {
	return walletLabels[p]
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
