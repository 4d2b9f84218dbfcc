package services

import (
	"errors"
	"math/big"

	"catering_backend/internal/models"
	"catering_backend/internal/repositories"
	"catering_backend/pkg/utils"

	"golang.org/x/crypto/sha3"
)

var (
	// ErrAttendanceCodeNotResolved covers both an unknown code and a
	// plan whose scanning is switched off. The two cases are told apart
	// in the logs only, so the response does not reveal whether
	// scanning is active.
	ErrAttendanceCodeNotResolved = errors.New("attendance code not resolved")
)

const (
	attendanceCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	attendanceCodeLength   = 12
	attendanceKeySeparator = ":"
)

// AttendanceService generates and resolves the deterministic codes a
// physical scanner uses to confirm meal pickup without carrying
// participant identity.
type AttendanceService interface {
	Encode(planID, memberID, day string) string
	BuildAttendanceMap(planID string, orderDetail map[string]*models.DayRecord) map[string]models.AttendanceKey
	ToggleScanMode(planID string) (*models.Plan, error)
	Resolve(planID, code string) (models.AttendanceKey, error)
}

type attendanceService struct {
	recordRepo repositories.RecordRepository
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(recordRepo repositories.RecordRepository) AttendanceService {
	return &attendanceService{recordRepo: recordRepo}
}

// Encode derives the 12-character attendance code for one participant
// on one delivery day. The SHA3-256 digest of the composite key is read
// as a single unsigned integer and rendered base-62, most significant
// digit first, left-padded with '0'. The code is stable for fixed
// inputs and does not expose the member id.
func (s *attendanceService) Encode(planID, memberID, day string) string {
	composite := planID + attendanceKeySeparator + memberID + attendanceKeySeparator + day
	digest := sha3.Sum256([]byte(composite))

	n := new(big.Int).SetBytes(digest[:])
	base := big.NewInt(int64(len(attendanceCodeAlphabet)))
	rem := new(big.Int)

	digits := make([]byte, 0, attendanceCodeLength)
	for n.Sign() > 0 && len(digits) < attendanceCodeLength {
		n.DivMod(n, base, rem)
		digits = append(digits, attendanceCodeAlphabet[rem.Int64()])
	}

	code := make([]byte, attendanceCodeLength)
	for i := range code {
		code[i] = attendanceCodeAlphabet[0]
	}
	// digits came out least significant first
	for i, d := range digits {
		code[attendanceCodeLength-1-i] = d
	}
	return string(code)
}

// BuildAttendanceMap computes the reverse code-to-identity mapping for
// every participant of every day. The map is always rebuilt whole:
// membership may have changed since the last build, and a stale entry
// would let an old code resolve.
func (s *attendanceService) BuildAttendanceMap(planID string, orderDetail map[string]*models.DayRecord) map[string]models.AttendanceKey {
	attendance := make(map[string]models.AttendanceKey)
	for day, record := range orderDetail {
		if record == nil {
			continue
		}
		for memberID := range record.MemberOrders {
			code := s.Encode(planID, memberID, day)
			attendance[code] = models.AttendanceKey{PlanID: planID, MemberID: memberID, Day: day}
		}
	}
	return attendance
}

// ToggleScanMode flips the plan's scan switch. Switching on rebuilds
// the attendance map from the current day records; switching off keeps
// the map in place since resolution is gated on the switch anyway.
func (s *attendanceService) ToggleScanMode(planID string) (*models.Plan, error) {
	plan, err := s.recordRepo.GetPlanByID(planID)
	if err != nil {
		return nil, err
	}

	plan.AllowToScan = !plan.AllowToScan
	if plan.AllowToScan {
		plan.BarcodeHashMap = s.BuildAttendanceMap(plan.ID, plan.OrderDetail)
	}

	if err := s.recordRepo.UpdatePlan(nil, plan); err != nil {
		return nil, err
	}

	utils.LogInfo("scan mode toggled", map[string]interface{}{
		"plan_id":       plan.ID,
		"allow_to_scan": plan.AllowToScan,
		"codes":         len(plan.BarcodeHashMap),
	})
	return plan, nil
}

// Resolve looks a scanned code up in the plan's attendance map. The
// disabled and unknown-code cases produce the same error value on
// purpose; only the log line differs.
func (s *attendanceService) Resolve(planID, code string) (models.AttendanceKey, error) {
	plan, err := s.recordRepo.GetPlanByID(planID)
	if err != nil {
		return models.AttendanceKey{}, err
	}

	if !plan.AllowToScan {
		utils.LogInfo("attendance code rejected: scanning disabled", map[string]interface{}{
			"plan_id": planID,
		})
		return models.AttendanceKey{}, ErrAttendanceCodeNotResolved
	}

	key, ok := plan.BarcodeHashMap[code]
	if !ok {
		utils.LogInfo("attendance code rejected: unknown code", map[string]interface{}{
			"plan_id": planID,
		})
		return models.AttendanceKey{}, ErrAttendanceCodeNotResolved
	}
	return key, nil
}
