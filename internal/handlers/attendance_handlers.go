package handlers

import (
	"errors"
	"net/http"

	"catering_backend/internal/repositories"
	"catering_backend/internal/services"
	"catering_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AttendanceHandler holds the attendance code service.
type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceService: as}
}

// ToggleScanMode flips attendance scanning for a plan. Enabling rebuilds
// the code map, so codes always match the current membership.
func (h *AttendanceHandler) ToggleScanMode(c *gin.Context) {
	planID := c.Param("id")

	plan, err := h.attendanceService.ToggleScanMode(planID)
	if err != nil {
		utils.LogError(err, "ToggleScanMode: Error from attendanceService.ToggleScanMode")
		respondAttendanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan_id":       plan.ID,
		"allow_to_scan": plan.AllowToScan,
	})
}

// ResolveCode maps a scanned code back to its participant and day.
// A disabled scanner and an unknown code answer identically.
func (h *AttendanceHandler) ResolveCode(c *gin.Context) {
	planID := c.Param("id")
	code := c.Param("code")

	key, err := h.attendanceService.Resolve(planID, code)
	if err != nil {
		utils.LogError(err, "ResolveCode: Error from attendanceService.Resolve")
		respondAttendanceError(c, err)
		return
	}
	c.JSON(http.StatusOK, key)
}

func respondAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAttendanceCodeNotResolved):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeAttendanceCodeNotResolved, "Attendance code not resolved.", ""))
	case errors.Is(err, repositories.ErrNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Plan not found.", err.Error()))
	case errors.Is(err, repositories.ErrVersionConflict):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "The plan changed concurrently. Retry the toggle.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}
