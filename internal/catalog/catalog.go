package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
)

// Catalog is a read-only, ordered registry of plans.
type Catalog struct {
	plans []Plan
	byID  map[string]int
}

// New validates the plans and builds a catalog that keeps their order.
func New(plans ...Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog requires at least one plan")
	}
	c := &Catalog{
		plans: make([]Plan, 0, len(plans)),
		byID:  make(map[string]int, len(plans)),
	}
	var errs error
	for _, plan := range plans {
		if err := validatePlan(plan); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := c.byID[plan.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("plan %q: duplicate id", plan.ID))
			continue
		}
		c.byID[plan.ID] = len(c.plans)
		c.plans = append(c.plans, plan.Clone())
	}
	if errs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid catalog")
	}
	return c, nil
}

func validatePlan(p Plan) error {
	var errs error
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("plan id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = multierr.Append(errs, fmt.Errorf("plan %q: name is required", p.ID))
	}
	if p.Price.IsNegative() {
		errs = multierr.Append(errs, fmt.Errorf("plan %q: price must not be negative", p.ID))
	}
	if !p.Period.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("plan %q: invalid period %q", p.ID, p.Period))
	}
	if !p.BillingCycle.IsValid() {
		errs = multierr.Append(errs, fmt.Errorf("plan %q: invalid billing cycle %q", p.ID, p.BillingCycle))
	}
	if len(p.Features) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("plan %q: features must not be empty", p.ID))
	}
	return errs
}

// List returns the plans in display order.
func (c *Catalog) List() []Plan {
	out := make([]Plan, len(c.plans))
	for i, plan := range c.plans {
		out[i] = plan.Clone()
	}
	return out
}

// Get returns the plan with the given id or a NOT_FOUND error.
func (c *Catalog) Get(id string) (Plan, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Plan{}, pkgerrors.NotFound("plan", id)
	}
	return c.plans[idx].Clone(), nil
}

// Len returns the number of plans.
func (c *Catalog) Len() int {
	return len(c.plans)
}
