package lifecycle

import (
	"math"
	"time"
)

// RefundKind distinguishes the three possible refund outcomes.
type RefundKind string

const (
	RefundFull    RefundKind = "FULL"    // 100% cash back
	RefundPartial RefundKind = "PARTIAL" // 50% cash back, needs approval
	RefundCredit  RefundKind = "CREDIT"  // 100% store credit
)

// Refund policy constants: a unit further than fullRefundDays from its
// expiry (or with no expiry at all) is refunded in full; inside that
// window the customer gets full store credit or half the price in cash.
const (
	fullRefundDays       = 14
	partialRefundPercent = 50
)

// RefundableState is the slice of a unit's state the calculator needs.
// ExpiresAt is the unit's own expiry, falling back to the catalog
// item's validity end; nil means no expiry was ever configured.
type RefundableState struct {
	Status     UnitStatus
	Paid       bool
	PriceCents int64
	ExpiresAt  *time.Time
}

// RefundPlan is the decided outcome.  AutoApproved plans are processed
// immediately; the rest are recorded and wait for an explicit approval
// that runs the same processing routine.
type RefundPlan struct {
	Kind         RefundKind
	RefundCents  int64 // cash amount, signed positive
	CreditCents  int64 // store-credit amount
	AutoApproved bool
	NewStatus    UnitStatus // REFUNDED or CREDITED once processed
}

// PlanRefund decides refund type and amounts for a unit at the given
// moment.  Preconditions short-circuit with distinct reasons; legality
// of the implied status change is inherent in the status checks (only
// PURCHASED and PARTIALLY_CONSUMED units can move to REFUNDED or
// CREDITED).
func PlanRefund(st RefundableState, at time.Time, preferCredit bool) (RefundPlan, error) {
	if !st.Paid {
		return RefundPlan{}, reject(ReasonNotPaid, "purchase has not completed payment")
	}
	switch st.Status {
	case UnitConsumed:
		return RefundPlan{}, reject(ReasonAlreadyConsumed, "unit is fully consumed")
	case UnitRefunded:
		return RefundPlan{}, reject(ReasonAlreadyRefunded, "unit was already refunded")
	case UnitCredited:
		return RefundPlan{}, reject(ReasonAlreadyCredited, "unit was already credited")
	case UnitExpired:
		return RefundPlan{}, reject(ReasonExpired, "unit expired")
	case UnitPurchased, UnitPartiallyConsumed:
		// refundable
	default:
		return RefundPlan{}, reject(ReasonInvalidStatus, "unit status %s does not permit a refund", st.Status)
	}
	if st.ExpiresAt != nil && at.After(*st.ExpiresAt) {
		return RefundPlan{}, reject(ReasonExpired, "unit validity ended %s", st.ExpiresAt.Format(time.RFC3339))
	}

	// No expiry configured means infinite headroom: always a full refund.
	if st.ExpiresAt == nil || st.ExpiresAt.Sub(at).Hours() > fullRefundDays*24 {
		return RefundPlan{
			Kind:         RefundFull,
			RefundCents:  st.PriceCents,
			AutoApproved: true,
			NewStatus:    UnitRefunded,
		}, nil
	}
	if preferCredit {
		return RefundPlan{
			Kind:         RefundCredit,
			CreditCents:  st.PriceCents,
			AutoApproved: true,
			NewStatus:    UnitCredited,
		}, nil
	}
	// Half the price in cash, rounded half away from zero on odd cents.
	half := int64(math.Round(float64(st.PriceCents) * partialRefundPercent / 100))
	return RefundPlan{
		Kind:        RefundPartial,
		RefundCents: half,
		NewStatus:   UnitRefunded,
	}, nil
}
