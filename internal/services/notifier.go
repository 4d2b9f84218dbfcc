package services

import (
	"catering_backend/pkg/utils"
)

// BookerNotifier tells an order's booker that the order now awaits
// payment. Delivery (mail, push) lives outside this service; calls are
// fire-and-forget and a failed delivery never blocks a transition.
type BookerNotifier interface {
	NotifyPendingPayment(orderID, bookerID string)
}

type logNotifier struct{}

// NewLogNotifier returns a notifier that only records the event. The
// real dispatch pipeline plugs in behind the same interface.
func NewLogNotifier() BookerNotifier {
	return logNotifier{}
}

func (logNotifier) NotifyPendingPayment(orderID, bookerID string) {
	utils.LogInfo("booker notified: order pending payment", map[string]interface{}{
		"order_id":  orderID,
		"booker_id": bookerID,
	})
}
