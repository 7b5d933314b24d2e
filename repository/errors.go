package repository

import "errors"

// Sentinel errors returned by repositories and services. The HTTP layer maps
// them to status codes (not found -> 404, conflicts -> 409, validation -> 400).
var (
	ErrNotFound = errors.New("not found")

	ErrValidation = errors.New("invalid input")

	// Conflict family: a lock or one-way flag rejected the write.
	ErrBagFinalized    = errors.New("bag is finalized")
	ErrShipmentLocked  = errors.New("shipment data is locked")
	ErrClubLocked      = errors.New("club is locked")
	ErrAlreadyClubbed  = errors.New("shipment already belongs to a club")
	ErrNotClubbable    = errors.New("shipment payment type cannot be clubbed")
	ErrAlreadyBilled   = errors.New("shipment is already billed")
	ErrNoRunAssigned   = errors.New("shipment was never assigned to a run")
	ErrEmptyInvoice    = errors.New("invoice has no shipments")
	ErrDuplicateRecord = errors.New("record already exists")
)

// IsConflict reports whether err belongs to the conflict family. Conflicts are
// reported to the caller and never retried.
func IsConflict(err error) bool {
	for _, c := range []error{
		ErrBagFinalized, ErrShipmentLocked, ErrClubLocked, ErrAlreadyClubbed,
		ErrNotClubbable, ErrAlreadyBilled, ErrNoRunAssigned, ErrEmptyInvoice,
		ErrDuplicateRecord,
	} {
		if errors.Is(err, c) {
			return true
		}
	}
	return false
}
