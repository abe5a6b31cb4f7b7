package timelogs

import (
	"regexp"
	"testing"

	"timebridge/internal/features/approval"
	"timebridge/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

func useMockDb(t *testing.T) sqlmock.Sqlmock {
	sqlDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDb.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDb}), &gorm.Config{
		Logger:                 gorm_logger.Default.LogMode(gorm_logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	storage.UseDb(db)
	return mock
}

func Test_CompareAndSwapStatus_WhenStatusMatches_UpdatesAndNotifies(t *testing.T) {
	mock := useMockDb(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "time_logs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_notify`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	swapped, err := (&TimeLogRepository{}).CompareAndSwapStatus(
		"T1", approval.StatusPending, approval.StatusApprovedPM, nil,
	)
	require.NoError(t, err)

	assert.True(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_CompareAndSwapStatus_WhenStatusChanged_ReportsNoSwap(t *testing.T) {
	mock := useMockDb(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "time_logs" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	swapped, err := (&TimeLogRepository{}).CompareAndSwapStatus(
		"T1", approval.StatusPending, approval.StatusApprovedPM, nil,
	)
	require.NoError(t, err)

	assert.False(t, swapped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func syncedTimeLog() *TimeLog {
	factorialID := "a"
	return &TimeLog{
		ID:              "fac_log_a",
		SubcontractorID: "fac_emp_1",
		ProjectID:       "fac_proj_10",
		Date:            "2024-05-02",
		Hours:           8,
		Description:     ImportedDescription,
		Status:          approval.StatusPending,
		FactorialID:     &factorialID,
	}
}

func Test_UpsertFromSync_InMergeMode_KeepsStatusAndFeedback(t *testing.T) {
	mock := useMockDb(t)

	mock.ExpectExec(`INSERT INTO "time_logs" .* ON CONFLICT \("id"\) DO UPDATE SET ` + regexp.QuoteMeta(
		`"date"="excluded"."date","hours"="excluded"."hours","description"="excluded"."description"`) + `$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_notify`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := (&TimeLogRepository{}).UpsertFromSync(syncedTimeLog(), true)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_UpsertFromSync_InOverwriteMode_ResetsStatusAndFeedback(t *testing.T) {
	mock := useMockDb(t)

	mock.ExpectExec(`INSERT INTO "time_logs" .* ON CONFLICT \("id"\) DO UPDATE SET ` + regexp.QuoteMeta(
		`"date"="excluded"."date","hours"="excluded"."hours","description"="excluded"."description",`+
			`"project_id"="excluded"."project_id","subcontractor_id"="excluded"."subcontractor_id",`+
			`"status"="excluded"."status","feedback"="excluded"."feedback","factorial_id"="excluded"."factorial_id"`) + `$`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_notify`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := (&TimeLogRepository{}).UpsertFromSync(syncedTimeLog(), false)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
