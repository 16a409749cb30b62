package helper

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/models"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClock(t *testing.T) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	config.Location = loc
	config.Now = func() time.Time {
		return time.Date(2026, 8, 30, 7, 30, 0, 0, loc)
	}
	t.Cleanup(func() { config.Now = time.Now })
}

func TestDerivePurposeNoDropOffYet(t *testing.T) {
	setupClock(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	config.DB = db

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(42), "2026-08-30", models.PurposeDropOff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	purpose, err := DerivePurpose(42)
	require.NoError(t, err)
	assert.Equal(t, models.PurposeDropOff, purpose)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDerivePurposeAfterDropOff(t *testing.T) {
	setupClock(t)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	config.DB = db

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(int64(42), "2026-08-30", models.PurposeDropOff).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	purpose, err := DerivePurpose(42)
	require.NoError(t, err)
	assert.Equal(t, models.PurposePickUp, purpose)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveStudentForGuardian(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	config.DB = db

	// Satu anak, tanpa student_id eksplisit
	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(7))
	id, err := ResolveStudentForGuardian(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	// Dua anak, tanpa student_id eksplisit -> ambiguous
	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(7).AddRow(8))
	_, err = ResolveStudentForGuardian(1, 0)
	assert.ErrorIs(t, err, ErrAmbiguousStudent)

	// Dua anak, student_id eksplisit
	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(7).AddRow(8))
	id, err = ResolveStudentForGuardian(1, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)

	// student_id bukan anak guardian ini
	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(7))
	_, err = ResolveStudentForGuardian(1, 99)
	assert.ErrorIs(t, err, ErrNotLinked)

	// Tidak ada anak sama sekali
	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))
	_, err = ResolveStudentForGuardian(1, 0)
	assert.ErrorIs(t, err, ErrNoStudent)
}
