package quota

import (
	"testing"
	"time"

	"timebridge/internal/features/approval"
	projects_models "timebridge/internal/features/projects/models"
	"timebridge/internal/features/timelogs"

	"github.com/stretchr/testify/assert"
)

var march = time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)

func entry(projectID, subcontractorID, date string, hours float64, status approval.Status) *timelogs.TimeLog {
	return &timelogs.TimeLog{
		ID:              projectID + subcontractorID + date,
		ProjectID:       projectID,
		SubcontractorID: subcontractorID,
		Date:            date,
		Hours:           hours,
		Status:          status,
	}
}

func Test_Calculate_MonthlyCapExceeded_RemainingNegativeAndPercentageCapped(t *testing.T) {
	assignment := projects_models.ProjectAssignment{
		ProjectID: "P1", SubcontractorID: "S1", HoursCap: 160, Period: projects_models.AssignmentPeriodMonthly,
	}

	entries := []*timelogs.TimeLog{
		entry("P1", "S1", "2025-03-03", 100, approval.StatusApprovedPM),
		entry("P1", "S1", "2025-03-10", 70, approval.StatusPending),
		entry("P1", "S1", "2025-02-27", 40, approval.StatusRatifiedMgr),
		entry("P1", "S2", "2025-03-10", 8, approval.StatusPending),
		entry("P2", "S1", "2025-03-10", 8, approval.StatusPending),
	}

	usage := Calculate(assignment, entries, march)

	assert.Equal(t, 170.0, usage.Consumed)
	assert.Equal(t, -10.0, usage.Remaining)
	assert.Equal(t, 100.0, usage.Percentage)
	assert.True(t, usage.IsOverAllocated)
}

func Test_Calculate_TotalPeriod_CountsEveryMonthAndStatus(t *testing.T) {
	assignment := projects_models.ProjectAssignment{
		ProjectID: "P1", SubcontractorID: "S1", HoursCap: 100, Period: projects_models.AssignmentPeriodTotal,
	}

	entries := []*timelogs.TimeLog{
		entry("P1", "S1", "2024-11-03", 10, approval.StatusRejected),
		entry("P1", "S1", "2025-03-10", 15, approval.StatusPending),
	}

	usage := Calculate(assignment, entries, march)

	assert.Equal(t, 25.0, usage.Consumed)
	assert.Equal(t, 75.0, usage.Remaining)
	assert.Equal(t, 25.0, usage.Percentage)
	assert.False(t, usage.IsOverAllocated)
}

func Test_Calculate_ZeroCap_PercentageIsZero(t *testing.T) {
	assignment := projects_models.ProjectAssignment{
		ProjectID: "P1", SubcontractorID: "S1", HoursCap: 0, Period: projects_models.AssignmentPeriodTotal,
	}

	usage := Calculate(assignment, []*timelogs.TimeLog{entry("P1", "S1", "2025-03-10", 5, approval.StatusPending)}, march)

	assert.Equal(t, 0.0, usage.Percentage)
	assert.Equal(t, -5.0, usage.Remaining)
}

func Test_Calculate_NoEntries_FullCapRemaining(t *testing.T) {
	assignment := projects_models.ProjectAssignment{
		ProjectID: "P1", SubcontractorID: "S1", HoursCap: 40, Period: projects_models.AssignmentPeriodMonthly,
	}

	usage := Calculate(assignment, nil, march)

	assert.Equal(t, 0.0, usage.Consumed)
	assert.Equal(t, 40.0, usage.Remaining)
	assert.Equal(t, 0.0, usage.Percentage)
}
