package services

import (
	"errors"
	"fmt"

	"catering_backend/internal/models"
	"catering_backend/internal/repositories"
)

// fakeRecordRepo is an in-memory stand-in for the listing store.
type fakeRecordRepo struct {
	orders map[string]*models.Order
	plans  map[string]*models.Plan

	orderUpdates int
	planUpdates  int
	failUpdates  error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{
		orders: map[string]*models.Order{},
		plans:  map[string]*models.Plan{},
	}
}

func (f *fakeRecordRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) error {
	if _, ok := f.orders[order.ID]; ok {
		return repositories.ErrDuplicateKey
	}
	f.orders[order.ID] = order
	return nil
}

func (f *fakeRecordRepo) GetOrderByID(orderID string) (*models.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return order, nil
}

func (f *fakeRecordRepo) UpdateOrder(_ repositories.SQLExecutor, order *models.Order) error {
	if f.failUpdates != nil {
		return f.failUpdates
	}
	if _, ok := f.orders[order.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.orders[order.ID] = order
	f.orderUpdates++
	return nil
}

func (f *fakeRecordRepo) CreatePlan(_ repositories.SQLExecutor, plan *models.Plan) error {
	if _, ok := f.plans[plan.ID]; ok {
		return repositories.ErrDuplicateKey
	}
	f.plans[plan.ID] = plan
	return nil
}

func (f *fakeRecordRepo) GetPlanByID(planID string) (*models.Plan, error) {
	plan, ok := f.plans[planID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return plan, nil
}

func (f *fakeRecordRepo) UpdatePlan(_ repositories.SQLExecutor, plan *models.Plan) error {
	if f.failUpdates != nil {
		return f.failUpdates
	}
	if _, ok := f.plans[plan.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.plans[plan.ID] = plan
	f.planUpdates++
	return nil
}

// fakeFulfillmentClient resolves transaction labels from a fixed map.
type fakeFulfillmentClient struct {
	outcomes map[string]string
}

func (f *fakeFulfillmentClient) GetTransactionOutcome(transactionID string) (string, error) {
	label, ok := f.outcomes[transactionID]
	if !ok {
		return "", fmt.Errorf("unknown transaction %s", transactionID)
	}
	return label, nil
}

// recordingNotifier captures pending-payment notifications.
type recordingNotifier struct {
	notified chan string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{notified: make(chan string, 8)}
}

func (n *recordingNotifier) NotifyPendingPayment(orderID, _ string) {
	n.notified <- orderID
}

var errUpdateRefused = errors.New("update refused")
