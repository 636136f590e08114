package model

import "time"

// Ledger reference types.
const (
	LedgerRefUnit        = "UNIT"
	LedgerRefReservation = "RESERVATION"
)

// LedgerEntry is one append-only row in the money ledger.  The engine
// only ever writes entries; it never reads the ledger back.
//
// Fields:
//  ID          – primary key identifier.
//  ReferenceID – the unit or reservation the entry refers to.
//  RefType     – UNIT or RESERVATION.
//  GrossCents  – signed amount; refunds are negative.
//  CreatedAt   – append timestamp.
type LedgerEntry struct {
	ID          uint64    // ledger_entries.id
	ReferenceID uint64    // ledger_entries.reference_id
	RefType     string    // ledger_entries.ref_type
	GrossCents  int64     // ledger_entries.gross_cents (signed)
	CreatedAt   time.Time // ledger_entries.created_at
}
