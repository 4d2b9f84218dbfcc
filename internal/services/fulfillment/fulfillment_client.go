package fulfillment

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Workflow labels reported by the fulfillment service for a daily
// delivery transaction. DeliveryComplete and the canceled labels are
// terminal; everything else means the delivery is still moving.
const (
	TransitionRequested        = "requested"
	TransitionConfirmed        = "confirmed"
	TransitionDelivering       = "delivering"
	TransitionDeliveryComplete = "delivery_complete"
	TransitionClientCanceled   = "client_canceled"
	TransitionPartnerCanceled  = "partner_canceled"
	TransitionAdminCanceled    = "admin_canceled"
)

var canceledTransitions = map[string]bool{
	TransitionClientCanceled:  true,
	TransitionPartnerCanceled: true,
	TransitionAdminCanceled:   true,
}

// IsCanceled reports whether the label is one of the canceled outcomes.
func IsCanceled(label string) bool {
	return canceledTransitions[label]
}

// IsTerminal reports whether no further progress is expected for the label.
func IsTerminal(label string) bool {
	return label == TransitionDeliveryComplete || IsCanceled(label)
}

// transactionAnswer is the fulfillment service's JSON response.
type transactionAnswer struct {
	TransactionID  string `json:"transaction_id"`
	LastTransition string `json:"last_transition"`
}

// Client resolves the current workflow label of a fulfillment transaction.
type Client interface {
	GetTransactionOutcome(transactionID string) (string, error)
}

type client struct {
	serviceAddr string
	rest        *resty.Client
}

// NewClient creates a fulfillment client against the given service address.
func NewClient(serviceAddr string) Client {
	return client{serviceAddr: serviceAddr, rest: resty.New()}
}

func (c client) GetTransactionOutcome(transactionID string) (string, error) {
	path := "/api/transactions/"

	resp, err := c.rest.R().Get(c.serviceAddr + path + transactionID)
	if err != nil {
		return "", err
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		var answer transactionAnswer
		if err := json.Unmarshal(resp.Body(), &answer); err != nil {
			return "", err
		}
		return answer.LastTransition, nil
	default:
		return "", fmt.Errorf("fulfillment request status: %d", resp.StatusCode())
	}
}
