package quota

import (
	"math"
	"strings"
	"time"

	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/timelogs"
	time_parser "timebridge/internal/util/time"
)

// Usage is derived on every read and never stored.
type Usage struct {
	ProjectID       string                           `json:"projectId"`
	SubcontractorID string                           `json:"subcontractorId"`
	Period          projects_models.AssignmentPeriod `json:"period"`
	HoursCap        float64                          `json:"hoursCap"`
	Consumed        float64                          `json:"consumed"`
	Remaining       float64                          `json:"remaining"`
	Percentage      float64                          `json:"percentage"`
	IsOverAllocated bool                             `json:"isOverAllocated"`
}

// Calculate sums the hours of every entry matching the assignment regardless
// of status. Monthly caps only count entries dated in the month of now.
// Remaining goes negative on over-allocation; percentage is capped at 100.
func Calculate(assignment projects_models.ProjectAssignment, entries []*timelogs.TimeLog, now time.Time) Usage {
	monthPrefix := time_parser.CurrentMonth(now)

	consumed := 0.0
	for _, entry := range entries {
		if entry.ProjectID != assignment.ProjectID || entry.SubcontractorID != assignment.SubcontractorID {
			continue
		}

		if assignment.Period == projects_models.AssignmentPeriodMonthly && !strings.HasPrefix(entry.Date, monthPrefix) {
			continue
		}

		consumed += entry.Hours
	}

	percentage := 0.0
	if assignment.HoursCap > 0 {
		percentage = math.Min(100, consumed/assignment.HoursCap*100)
	}

	remaining := assignment.HoursCap - consumed

	return Usage{
		ProjectID:       assignment.ProjectID,
		SubcontractorID: assignment.SubcontractorID,
		Period:          assignment.Period,
		HoursCap:        assignment.HoursCap,
		Consumed:        consumed,
		Remaining:       remaining,
		Percentage:      percentage,
		IsOverAllocated: remaining < 0,
	}
}
