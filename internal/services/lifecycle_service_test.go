package services

import (
	"testing"
	"time"

	"catering_backend/internal/models"
	"catering_backend/internal/services/fulfillment"

	"github.com/stretchr/testify/require"
)

func seedOrder(repo *fakeRecordRepo, state models.OrderState, planIDs ...string) *models.Order {
	order := &models.Order{
		ID:        "order-1",
		State:     state,
		OrderType: models.OrderTypeGroup,
		BookerID:  "booker-1",
		PlanIDs:   planIDs,
		StateHistory: []models.StateEntry{
			{State: state, UpdatedAt: time.Now().Add(-time.Hour)},
		},
	}
	_ = repo.CreateOrder(nil, order)
	return order
}

func seedPlan(repo *fakeRecordRepo, id string, transactions map[string]string) *models.Plan {
	detail := map[string]*models.DayRecord{}
	i := 0
	for txID, label := range transactions {
		day := time.Unix(1719446400+int64(i)*86400, 0).UTC().Format("2006-01-02")
		detail[day] = &models.DayRecord{TransactionID: txID, LastTransition: label}
		i++
	}
	plan := &models.Plan{ID: id, OrderID: "order-1", OrderDetail: detail}
	_ = repo.CreatePlan(nil, plan)
	return plan
}

func newTestLifecycle(repo *fakeRecordRepo, outcomes map[string]string) (LifecycleService, *recordingNotifier) {
	notifier := newRecordingNotifier()
	svc := NewLifecycleService(repo, &fakeFulfillmentClient{outcomes: outcomes}, notifier)
	return svc, notifier
}

func TestEvaluateNoTransactionsUnchanged(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePicking, "plan-1")
	seedPlan(repo, "plan-1", nil)

	svc, _ := newTestLifecycle(repo, nil)

	order, err := svc.EvaluateTransition("order-1")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatePicking, order.State)
	require.Len(t, order.StateHistory, 1)
	require.Zero(t, repo.orderUpdates)
}

func TestEvaluateCompletedWhenPaidAndTerminal(t *testing.T) {
	repo := newFakeRecordRepo()
	order := seedOrder(repo, models.OrderStateInProgress, "plan-1")
	order.IsClientSufficientPaid = true
	order.IsPartnerSufficientPaid = true
	outcomes := map[string]string{
		"tx-1": fulfillment.TransitionDeliveryComplete,
		"tx-2": fulfillment.TransitionDeliveryComplete,
	}
	seedPlan(repo, "plan-1", outcomes)

	svc, _ := newTestLifecycle(repo, outcomes)

	updated, err := svc.EvaluateTransition("order-1")
	require.NoError(t, err)
	require.Equal(t, models.OrderStateCompleted, updated.State)
	require.Len(t, updated.StateHistory, 2)
	require.Equal(t, models.OrderStateCompleted, updated.StateHistory[1].State)
	require.Equal(t, 1, repo.orderUpdates)
}

func TestEvaluateCanceledOnlyMovesToPendingPayment(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePicking, "plan-1")
	outcomes := map[string]string{"tx-1": fulfillment.TransitionClientCanceled}
	seedPlan(repo, "plan-1", outcomes)

	svc, notifier := newTestLifecycle(repo, outcomes)

	updated, err := svc.EvaluateTransition("order-1")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatePendingPayment, updated.State)

	select {
	case orderID := <-notifier.notified:
		require.Equal(t, "order-1", orderID)
	case <-time.After(time.Second):
		t.Fatal("booker was not notified of pending payment")
	}
}

func TestEvaluatePendingPaymentStaysPut(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePendingPayment, "plan-1")
	outcomes := map[string]string{"tx-1": fulfillment.TransitionDeliveryComplete}
	seedPlan(repo, "plan-1", outcomes)

	svc, _ := newTestLifecycle(repo, outcomes)

	updated, err := svc.EvaluateTransition("order-1")
	require.NoError(t, err)
	require.Equal(t, models.OrderStatePendingPayment, updated.State)
	require.Zero(t, repo.orderUpdates)
}

func TestEvaluateNonTerminalBlocksTransition(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStateInProgress, "plan-1")
	outcomes := map[string]string{
		"tx-1": fulfillment.TransitionDeliveryComplete,
		"tx-2": fulfillment.TransitionDelivering,
	}
	seedPlan(repo, "plan-1", outcomes)

	svc, _ := newTestLifecycle(repo, outcomes)

	updated, err := svc.EvaluateTransition("order-1")
	require.NoError(t, err)
	require.Equal(t, models.OrderStateInProgress, updated.State)
	require.Zero(t, repo.orderUpdates)
}

func TestStartPicking(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePicking)
	svc, _ := newTestLifecycle(repo, nil)

	updated, err := svc.StartPicking("order-1")
	require.NoError(t, err)
	require.Equal(t, models.OrderStateInProgress, updated.State)
	require.Len(t, updated.StateHistory, 2)

	// no edge from in_progress back through start
	_, err = svc.StartPicking("order-1")
	require.ErrorIs(t, err, ErrIllegalStateTransition)
}

func TestStartPickingUnknownOrder(t *testing.T) {
	svc, _ := newTestLifecycle(newFakeRecordRepo(), nil)
	_, err := svc.StartPicking("missing")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestSubmitReviewFromPendingPayment(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePendingPayment)
	svc, _ := newTestLifecycle(repo, nil)

	updated, err := svc.SubmitReview("order-1", 5, "great week")
	require.NoError(t, err)
	require.Equal(t, models.OrderStateReviewed, updated.State)
	require.NotNil(t, updated.Review)
	require.Equal(t, 5, updated.Review.Rating)

	// completion was implied: two entries, identically stamped
	require.Len(t, updated.StateHistory, 3)
	completed := updated.StateHistory[1]
	reviewed := updated.StateHistory[2]
	require.Equal(t, models.OrderStateCompleted, completed.State)
	require.Equal(t, models.OrderStateReviewed, reviewed.State)
	require.Equal(t, completed.UpdatedAt, reviewed.UpdatedAt)
}

func TestSubmitReviewFromCompleted(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStateCompleted)
	svc, _ := newTestLifecycle(repo, nil)

	updated, err := svc.SubmitReview("order-1", 4, "")
	require.NoError(t, err)
	require.Equal(t, models.OrderStateReviewed, updated.State)
	require.Len(t, updated.StateHistory, 2)
}

func TestSubmitReviewRejectedElsewhere(t *testing.T) {
	for _, state := range []models.OrderState{
		models.OrderStatePicking,
		models.OrderStateInProgress,
		models.OrderStateReviewed,
		models.OrderStateCanceled,
	} {
		repo := newFakeRecordRepo()
		seedOrder(repo, state)
		svc, _ := newTestLifecycle(repo, nil)

		_, err := svc.SubmitReview("order-1", 3, "")
		require.ErrorIs(t, err, ErrInvalidOrderState, "state %s", state)
	}
}

func TestDecideTransitionGraphClosure(t *testing.T) {
	successors := map[models.OrderState]map[models.OrderState]bool{
		models.OrderStatePicking:        {models.OrderStatePendingPayment: true},
		models.OrderStateInProgress:     {models.OrderStateCompleted: true, models.OrderStatePendingPayment: true},
		models.OrderStatePendingPayment: {models.OrderStateCompleted: true},
		models.OrderStateCompleted:      {},
		models.OrderStateReviewed:       {},
		models.OrderStateCanceled:       {},
	}

	states := []models.OrderState{
		models.OrderStatePicking, models.OrderStateInProgress,
		models.OrderStatePendingPayment, models.OrderStateCompleted,
		models.OrderStateReviewed, models.OrderStateCanceled,
	}

	for _, state := range states {
		for _, clientPaid := range []bool{false, true} {
			for _, partnerPaid := range []bool{false, true} {
				for _, terminal := range []bool{false, true} {
					order := &models.Order{
						State:                   state,
						IsClientSufficientPaid:  clientPaid,
						IsPartnerSufficientPaid: partnerPaid,
					}
					target, ok := DecideTransition(order, terminal)
					if !ok {
						require.Equal(t, state, target)
						continue
					}
					require.True(t, successors[state][target],
						"illegal edge %s -> %s (paid=%v/%v terminal=%v)",
						state, target, clientPaid, partnerPaid, terminal)
				}
			}
		}
	}
}

func TestAllTerminal(t *testing.T) {
	require.False(t, AllTerminal(nil))
	require.True(t, AllTerminal([]string{
		fulfillment.TransitionDeliveryComplete,
		fulfillment.TransitionPartnerCanceled,
		fulfillment.TransitionAdminCanceled,
	}))
	require.False(t, AllTerminal([]string{
		fulfillment.TransitionDeliveryComplete,
		fulfillment.TransitionConfirmed,
	}))
}

func TestEvaluateRefreshesCachedTransitions(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePendingPayment, "plan-1")
	seedPlan(repo, "plan-1", map[string]string{"tx-1": fulfillment.TransitionDelivering})
	outcomes := map[string]string{"tx-1": fulfillment.TransitionDeliveryComplete}

	svc, _ := newTestLifecycle(repo, outcomes)

	updated, err := svc.EvaluateTransition("order-1")
	require.NoError(t, err)
	// no lifecycle move, but the stale cached label was rewritten
	require.Equal(t, models.OrderStatePendingPayment, updated.State)
	require.Zero(t, repo.orderUpdates)
	require.Equal(t, 1, repo.planUpdates)

	plan := repo.plans["plan-1"]
	for _, record := range plan.OrderDetail {
		require.Equal(t, fulfillment.TransitionDeliveryComplete, record.LastTransition)
	}
}

func TestEvaluatePropagatesUpdateFailure(t *testing.T) {
	repo := newFakeRecordRepo()
	seedOrder(repo, models.OrderStatePicking, "plan-1")
	outcomes := map[string]string{"tx-1": fulfillment.TransitionDeliveryComplete}
	seedPlan(repo, "plan-1", outcomes)
	repo.failUpdates = errUpdateRefused

	svc, _ := newTestLifecycle(repo, outcomes)

	_, err := svc.EvaluateTransition("order-1")
	require.ErrorIs(t, err, errUpdateRefused)
}
