package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/pkg/enums"
)

// Plan is an immutable catalog entry.
type Plan struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Period       enums.BillingPeriod
	BillingCycle enums.BillingCycle
	Features     []string
	Savings      string
	Popular      bool
}

// Clone returns a deep copy so callers can never alias the catalog's feature slice.
func (p Plan) Clone() Plan {
	out := p
	out.Features = append([]string(nil), p.Features...)
	return out
}

// Equal reports whether two plans carry the same identity and terms.
func (p Plan) Equal(other Plan) bool {
	if p.ID != other.ID || p.Name != other.Name || !p.Price.Equal(other.Price) ||
		p.Period != other.Period || p.BillingCycle != other.BillingCycle ||
		p.Savings != other.Savings || p.Popular != other.Popular ||
		len(p.Features) != len(other.Features) {
		return false
	}
	for i := range p.Features {
		if p.Features[i] != other.Features[i] {
			return false
		}
	}
	return true
}
