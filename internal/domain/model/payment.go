package model

import "time"

// PaymentStatus mirrors the gateway's payment lifecycle states we care about.
type PaymentStatus string

const (
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentNotification is the read-only payload the reconciler consumes. It
// is derived from the gateway's payment resource and never persisted
// verbatim; only the entitlement fields it yields are stored.
type PaymentNotification struct {
	PaymentID         string
	ExternalReference string // our user id, set at preference-creation time
	PayerID           string
	ItemID            string // echoed plan identifier, may be empty
	AmountCents       int64
	Status            PaymentStatus
	ApprovedAt        *time.Time
}

// PreferenceRequest is what the preference creator submits to the gateway.
type PreferenceRequest struct {
	ItemID            string
	Title             string
	Quantity          int
	UnitPriceCents    int64
	Currency          string
	PayerEmail        string
	SuccessURL        string
	FailureURL        string
	PendingURL        string
	NotificationURL   string
	ExternalReference string
}

// Preference is the gateway's registered, payable line-item set.
type Preference struct {
	ID        string
	InitPoint string // hosted checkout URL the browser is sent to
}

// CheckoutSession is what the create-checkout endpoint returns to clients.
type CheckoutSession struct {
	PreferenceID string `json:"preferenceId"`
	InitPoint    string `json:"initPoint"`
}
