package cellar

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or a note does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInCellar is returned when a lifecycle operation needs a cellar record.
	ErrNotInCellar = errors.New("record is not in the cellar")
	// ErrUnresolvedMatch marks an external entry that matches no cellar record.
	ErrUnresolvedMatch = errors.New("no matching cellar record")
	// ErrMalformedEntry marks an external entry that cannot be parsed.
	ErrMalformedEntry = errors.New("malformed ledger entry")
	// ErrLifecycleField is returned when an edit touches a field that only the
	// lifecycle operations may change.
	ErrLifecycleField = errors.New("field is managed by the lifecycle")
	// ErrInvariant is wrapped by every InvariantError.
	ErrInvariant = errors.New("inventory invariant violated")
)

// InvariantError reports a record that breaks an inventory invariant after a
// transaction. It is a programming contract failure, the transaction is rejected.
type InvariantError struct {
	Rule   string // one of the Rule* constants
	Record ID
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s on record %d: %s", e.Rule, e.Record, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariant rules checked when a transaction commits.
const (
	RuleQuantity         = "quantity"          // a cellar record never holds more than it acquired
	RuleConsumedQuantity = "consumed-quantity" // a consumption event keeps its quantity
	RuleOnOrder          = "on-order"          // a consumed record is never on order
	RuleBalance          = "balance"           // acquired = held + consumed children
	RuleReference        = "reference"         // parents and note owners exist
	RuleRecord           = "record"            // field level validation
)
