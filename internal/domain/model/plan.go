package model

import (
	"github.com/shopspring/decimal"

	"subscription-billing/internal/domain"
)

// Plan is a purchasable tier: a name and a duration. Plans are not stored;
// the catalog is a fixed table keyed by the exact charged amount.
type Plan struct {
	Name           string
	DurationMonths int
}

// Catalog maps an exact major-unit amount to a plan. Lookup requires exact
// decimal equality: a mismatched amount indicates a tampered or malformed
// request, so there is no tolerance band.
type Catalog struct {
	tiers map[string]Plan
}

// CatalogTier pairs an amount with its plan for catalog construction.
type CatalogTier struct {
	Amount decimal.Decimal
	Plan   Plan
}

// NewCatalog builds a catalog from configured tiers.
func NewCatalog(tiers []CatalogTier) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	m := make(map[string]Plan, len(tiers))
	for _, t := range tiers {
		if t.Plan.Name == "" || t.Plan.DurationMonths <= 0 || !t.Amount.IsPositive() {
			return nil, domain.ErrInvalidArgument
		}
		m[catalogKey(t.Amount)] = t.Plan
	}
	return &Catalog{tiers: m}, nil
}

// DefaultCatalog returns the stock tier table.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]CatalogTier{
		{Amount: decimal.NewFromFloat(1999.0), Plan: Plan{Name: "1 Month", DurationMonths: 1}},
		{Amount: decimal.NewFromFloat(4999.0), Plan: Plan{Name: "3 Months", DurationMonths: 3}},
		{Amount: decimal.NewFromFloat(9999.0), Plan: Plan{Name: "6 Months", DurationMonths: 6}},
		{Amount: decimal.NewFromFloat(17999.0), Plan: Plan{Name: "12 Months", DurationMonths: 12}},
	})
	return c
}

// Resolve returns the plan charged at exactly amount.
func (c *Catalog) Resolve(amount decimal.Decimal) (Plan, error) {
	// Sub-paisa precision never matches a tier; truncating it away would
	// amount to a tolerance band.
	if !amount.Equal(amount.Truncate(2)) {
		return Plan{}, domain.ErrUnknownPlanAmount
	}
	p, ok := c.tiers[catalogKey(amount)]
	if !ok {
		return Plan{}, domain.ErrUnknownPlanAmount
	}
	return p, nil
}

// catalogKey normalizes scale so 1999, 1999.0 and 1999.00 hit the same tier.
func catalogKey(d decimal.Decimal) string {
	return d.StringFixed(2)
}
