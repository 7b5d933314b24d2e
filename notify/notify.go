package notify

import "context"

// Event kinds fired on milestones.
const (
	EventShipmentHeld = "shipment.held"
	EventBagFinalized = "bag.finalized"
	EventOffloaded    = "shipment.offloaded"
	EventInvoiceCut   = "invoice.created"
)

type Event struct {
	Kind    string
	Ref     string // AWB, bag number, or invoice number
	To      string // recipient address, may be empty
	Subject string
	Body    string
}

// Dispatcher delivers notifications best-effort. Failures are logged and
// never block a consolidation or billing transition.
type Dispatcher interface {
	Send(ctx context.Context, ev Event) error
}
