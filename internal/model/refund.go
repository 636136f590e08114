package model

import (
	"time"

	"github.com/reserbit/venue-lifecycle/internal/lifecycle"
)

// Refund request states.  Auto-approved plans are created directly in
// PROCESSED; partial refunds sit in REQUESTED until a staff approval
// runs the processing routine.
const (
	RefundRequested = "REQUESTED"
	RefundProcessed = "PROCESSED"
)

// RefundRequest captures one refund decision for a redeemable unit.
//
// Fields:
//  ID          – primary key identifier.
//  UnitID      – unit being refunded.
//  Status      – REQUESTED or PROCESSED.
//  Kind        – FULL, PARTIAL or CREDIT.
//  RefundCents – cash amount to return.
//  CreditCents – store-credit amount to issue.
//  Reason      – free-text reason given by the requester.
//  RequestedAt – when the request was made.
//  ProcessedAt – when processing completed (nullable).
type RefundRequest struct {
	ID          uint64               // refund_requests.id
	UnitID      uint64               // refund_requests.unit_id
	Status      string               // refund_requests.status
	Kind        lifecycle.RefundKind // refund_requests.kind
	RefundCents int64                // refund_requests.refund_cents
	CreditCents int64                // refund_requests.credit_cents
	Reason      string               // refund_requests.reason
	RequestedAt time.Time            // refund_requests.requested_at
	ProcessedAt *time.Time           // refund_requests.processed_at (nullable)
}
