package services

import (
	"catering_backend/internal/models"
)

// Partner capacity defaults applied when a restaurant carries no
// configured bound. Group orders default the minimum to zero because a
// group day with no joiners yet is a normal picking state; a normal
// order line-up of zero meals is not.
const (
	defaultMinQuantityNormal = 1
	defaultMinQuantityGroup  = 0
	defaultMaxQuantity       = 100
)

// DayQuantityCheck is the capacity verdict for one delivery day.
type DayQuantityCheck struct {
	Demand   int  `json:"demand"`
	BelowMin bool `json:"below_min"`
	AboveMax bool `json:"above_max"`
}

// QuantityReport aggregates the per-day checks. The order-level flags
// are the OR across days, so a caller can block or warn on the order as
// soon as one day is out of range while the UI points at the day.
type QuantityReport struct {
	BelowMin bool                        `json:"below_min"`
	AboveMax bool                        `json:"above_max"`
	Days     map[string]DayQuantityCheck `json:"days"`
}

// PickingService checks, day by day, whether the meals requested in a
// plan fit the partner's configured capacity. It is pure over its
// inputs and safe to call speculatively: the result is advisory, and a
// concurrent participant may still overshoot between check and write.
type PickingService interface {
	Validate(orderType models.OrderType, isPickingPhase bool, orderDetail map[string]*models.DayRecord) QuantityReport
}

type pickingService struct{}

// NewPickingService creates a new instance of PickingService.
func NewPickingService() PickingService {
	return &pickingService{}
}

func (s *pickingService) Validate(orderType models.OrderType, isPickingPhase bool, orderDetail map[string]*models.DayRecord) QuantityReport {
	report := QuantityReport{Days: map[string]DayQuantityCheck{}}
	if !isPickingPhase {
		// capacity guards only apply while the order is being picked
		return report
	}

	for day, record := range orderDetail {
		if record == nil {
			continue
		}

		check := DayQuantityCheck{Demand: dayDemand(orderType, record)}

		minQty := defaultMinQuantityNormal
		if orderType == models.OrderTypeGroup {
			minQty = defaultMinQuantityGroup
		}
		if record.Restaurant.MinQuantity != nil {
			minQty = *record.Restaurant.MinQuantity
		}
		maxQty := defaultMaxQuantity
		if record.Restaurant.MaxQuantity != nil {
			maxQty = *record.Restaurant.MaxQuantity
		}

		check.BelowMin = check.Demand < minQty
		check.AboveMax = check.Demand > maxQty
		report.Days[day] = check

		report.BelowMin = report.BelowMin || check.BelowMin
		report.AboveMax = report.AboveMax || check.AboveMax
	}
	return report
}

// dayDemand counts the meals requested for one day. Normal orders sum
// line quantities (an unset quantity counts as one); group orders count
// joined participants.
func dayDemand(orderType models.OrderType, record *models.DayRecord) int {
	demand := 0
	switch orderType {
	case models.OrderTypeGroup:
		for _, member := range record.MemberOrders {
			if member.Joined() {
				demand++
			}
		}
	default:
		for _, item := range record.LineItems {
			if item.Quantity <= 0 {
				demand++
				continue
			}
			demand += item.Quantity
		}
	}
	return demand
}
