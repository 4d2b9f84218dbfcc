package models

import "time"

// OrderState is the lifecycle state of a catering order.
type OrderState string

const (
	OrderStatePicking        OrderState = "picking"
	OrderStateInProgress     OrderState = "in_progress"
	OrderStatePendingPayment OrderState = "pending_payment"
	OrderStateCompleted      OrderState = "completed"
	OrderStateReviewed       OrderState = "reviewed"
	OrderStateCanceled       OrderState = "canceled"
)

// OrderType distinguishes per-line orders from per-participant group orders.
type OrderType string

const (
	OrderTypeNormal OrderType = "normal"
	OrderTypeGroup  OrderType = "group"
)

// StateEntry is one element of an order's state history.
// History entries are only ever appended, never rewritten.
type StateEntry struct {
	State     OrderState `json:"state"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Review holds the booker's rating once an order has been reviewed.
type Review struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Order is one catering campaign for a company. The payment flags are
// set by an external payment-tracking process; the lifecycle service
// only reads them. Version is the store's optimistic-concurrency tag
// and never travels in the attribute payload.
type Order struct {
	ID                      string       `json:"id"`
	State                   OrderState   `json:"state"`
	StateHistory            []StateEntry `json:"state_history"`
	IsClientSufficientPaid  bool         `json:"is_client_sufficient_paid"`
	IsPartnerSufficientPaid bool         `json:"is_partner_sufficient_paid"`
	PlanIDs                 []string     `json:"plan_ids"`
	OrderType               OrderType    `json:"order_type"`
	BookerID                string       `json:"booker_id"`
	Review                  *Review      `json:"review,omitempty"`
	Version                 int64        `json:"-"`
}

// AppendState records a transition in the history and moves the order
// to the new state. It does not validate the edge; callers decide
// legality first.
func (o *Order) AppendState(state OrderState, at time.Time) {
	o.State = state
	o.StateHistory = append(o.StateHistory, StateEntry{State: state, UpdatedAt: at})
}
