package services

import (
	"errors"
	"fmt"
	"time"

	"catering_backend/internal/models"
	"catering_backend/internal/repositories"
	"catering_backend/internal/services/fulfillment"
	"catering_backend/pkg/utils"
)

// Custom Errors
var (
	ErrIllegalStateTransition = errors.New("illegal order state transition")
	ErrInvalidOrderState      = errors.New("order state does not allow this operation")
	ErrOrderNotFound          = errors.New("order not found")
	ErrPlanNotFound           = errors.New("plan not found")
)

// LifecycleService owns the order state machine: which transitions are
// legal, when fulfillment signals move an order forward, and how the
// state history is appended. Persistence goes through a single
// version-checked update per transition; on a version conflict the
// caller re-fetches and re-evaluates instead of replaying.
type LifecycleService interface {
	EvaluateTransition(orderID string) (*models.Order, error)
	StartPicking(orderID string) (*models.Order, error)
	SubmitReview(orderID string, rating int, comment string) (*models.Order, error)
}

type lifecycleService struct {
	recordRepo  repositories.RecordRepository
	fulfillment fulfillment.Client
	notifier    BookerNotifier
}

// NewLifecycleService creates a new instance of LifecycleService.
func NewLifecycleService(
	recordRepo repositories.RecordRepository,
	fc fulfillment.Client,
	notifier BookerNotifier,
) LifecycleService {
	return &lifecycleService{
		recordRepo:  recordRepo,
		fulfillment: fc,
		notifier:    notifier,
	}
}

// --- Pure transition decisions ---

// AllTerminal reports whether every label is a terminal fulfillment
// outcome. An empty label set is not terminal: an order whose days have
// no transactions yet has nothing to settle.
func AllTerminal(labels []string) bool {
	if len(labels) == 0 {
		return false
	}
	for _, label := range labels {
		if !fulfillment.IsTerminal(label) {
			return false
		}
	}
	return true
}

// DecideTransition applies the lifecycle rules to an order given the
// aggregate fulfillment outcome. It returns the target state and
// whether a transition should happen at all. States from completed
// onward never regress: the lifecycle only moves forward.
func DecideTransition(order *models.Order, allTerminal bool) (models.OrderState, bool) {
	sufficientlyPaid := order.IsClientSufficientPaid && order.IsPartnerSufficientPaid
	inFlight := order.State == models.OrderStateInProgress || order.State == models.OrderStatePendingPayment
	beforePayment := order.State == models.OrderStatePicking || order.State == models.OrderStateInProgress

	if sufficientlyPaid && inFlight && allTerminal {
		return models.OrderStateCompleted, true
	}
	if allTerminal && beforePayment {
		return models.OrderStatePendingPayment, true
	}
	return order.State, false
}

// --- Operations ---

// EvaluateTransition resolves every daily transaction outcome and, when
// the rules call for it, moves the order forward one state. The moved
// order is persisted with its appended history in one update.
func (s *lifecycleService) EvaluateTransition(orderID string) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0)
	for _, planID := range order.PlanIDs {
		plan, err := s.recordRepo.GetPlanByID(planID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
			}
			return nil, err
		}

		dirty := false
		for _, record := range plan.OrderDetail {
			if record == nil || record.TransactionID == "" {
				continue
			}
			label, err := s.fulfillment.GetTransactionOutcome(record.TransactionID)
			if err != nil {
				utils.LogError(err, "EvaluateTransition: resolving transaction "+record.TransactionID)
				return nil, err
			}
			labels = append(labels, label)
			if record.LastTransition != label {
				record.LastTransition = label
				dirty = true
			}
		}

		// refresh the cached workflow labels even when no transition follows
		if dirty {
			if err := s.recordRepo.UpdatePlan(nil, plan); err != nil {
				return nil, err
			}
		}
	}

	target, ok := DecideTransition(order, AllTerminal(labels))
	if !ok {
		return order, nil
	}

	order.AppendState(target, time.Now())
	if err := s.recordRepo.UpdateOrder(nil, order); err != nil {
		return nil, err
	}

	if target == models.OrderStatePendingPayment {
		go s.notifier.NotifyPendingPayment(order.ID, order.BookerID)
	}

	utils.LogInfo("order transitioned", map[string]interface{}{
		"order_id": order.ID,
		"state":    string(target),
	})
	return order, nil
}

// StartPicking is the explicit manual move from picking to in_progress.
func (s *lifecycleService) StartPicking(orderID string) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	if order.State != models.OrderStatePicking {
		return nil, fmt.Errorf("%w: start picking from %s", ErrIllegalStateTransition, order.State)
	}

	order.AppendState(models.OrderStateInProgress, time.Now())
	if err := s.recordRepo.UpdateOrder(nil, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SubmitReview marks an order reviewed. A review against a
// pending_payment order implies completion, so the history gains a
// completed entry and a reviewed entry stamped with the same moment:
// the completion was inferred, not independently observed.
func (s *lifecycleService) SubmitReview(orderID string, rating int, comment string) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	switch order.State {
	case models.OrderStatePendingPayment:
		now := time.Now()
		order.AppendState(models.OrderStateCompleted, now)
		order.AppendState(models.OrderStateReviewed, now)
	case models.OrderStateCompleted:
		order.AppendState(models.OrderStateReviewed, time.Now())
	default:
		return nil, fmt.Errorf("%w: review from %s", ErrInvalidOrderState, order.State)
	}

	order.Review = &models.Review{Rating: rating, Comment: comment}
	if err := s.recordRepo.UpdateOrder(nil, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *lifecycleService) getOrder(orderID string) (*models.Order, error) {
	order, err := s.recordRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	return order, nil
}
