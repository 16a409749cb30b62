package handler

import (
	"backend-penjemputan/internal/models"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declareBody() map[string]interface{} {
	return map[string]interface{}{
		"student_id":   7,
		"section_id":   3,
		"status_label": "Sudah di gerbang",
		"purpose":      models.PurposePickUp,
	}
}

func TestDeclareQueueSukses(t *testing.T) {
	mock := setupTest(t)
	app := newApp(fiber.MethodPost, "/queue", guardianLocals, DeclareQueue)

	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(7))
	mock.ExpectQuery("SELECT status, nama FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"status", "nama"}).
			AddRow(models.StatusLearning, "Budi"))
	mock.ExpectExec("INSERT INTO queue_entries").
		WillReturnResult(sqlmock.NewResult(0, 1))

	code, parsed := doJSON(t, app, fiber.MethodPost, "/queue", declareBody())
	require.Equal(t, fiber.StatusCreated, code, "body: %v", parsed)

	data := dataField(t, parsed)
	assert.Equal(t, "Budi", data["student_name"])
	assert.Equal(t, "Ibu Ani", data["guardian_name"])
	assert.Equal(t, models.PurposePickUp, data["purpose"])
	assert.Equal(t, "2026-08-30 07:30:00", data["declared_at"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclareQueueMuridSudahDismissed(t *testing.T) {
	mock := setupTest(t)
	app := newApp(fiber.MethodPost, "/queue", guardianLocals, DeclareQueue)

	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(7))
	mock.ExpectQuery("SELECT status, nama FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"status", "nama"}).
			AddRow(models.StatusDismissed, "Budi"))

	code, parsed := doJSON(t, app, fiber.MethodPost, "/queue", declareBody())
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Contains(t, parsed["error"], "sudah dijemput")
}

func TestDeclareQueueMuridBukanAnaknya(t *testing.T) {
	mock := setupTest(t)
	app := newApp(fiber.MethodPost, "/queue", guardianLocals, DeclareQueue)

	// Guardian hanya ter-link ke murid 8, declare untuk murid 7 ditolak
	mock.ExpectQuery("SELECT student_id FROM guardian_students").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow(8))

	code, _ := doJSON(t, app, fiber.MethodPost, "/queue", declareBody())
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestDeclareQueuePurposeInvalid(t *testing.T) {
	setupTest(t)
	app := newApp(fiber.MethodPost, "/queue", guardianLocals, DeclareQueue)

	body := declareBody()
	body["purpose"] = "Kabur"

	code, _ := doJSON(t, app, fiber.MethodPost, "/queue", body)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetQueueTeacherHanyaSectionSendiri(t *testing.T) {
	mock := setupTest(t)
	app := newApp(fiber.MethodGet, "/queue", teacherLocals, GetQueue)

	mock.ExpectQuery("FROM queue_entries qe").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{
			"guardian_id", "g.nama", "student_id", "s.nama",
			"section_id", "nama_section", "purpose", "status_label", "declared_at",
		}).AddRow(1001, "Ibu Ani", 7, "Budi", 3, "Kelas 1A", models.PurposePickUp,
			"Sudah di gerbang", testNow))

	code, parsed := doJSON(t, app, fiber.MethodGet, "/queue", nil)
	require.Equal(t, fiber.StatusOK, code)

	entries, ok := parsed["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 1)

	entry := entries[0].(map[string]interface{})
	assert.Equal(t, "Budi", entry["student_name"])
	assert.Equal(t, "Kelas 1A", entry["section_name"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetQueueTeacherTanpaSection(t *testing.T) {
	setupTest(t)
	// Teacher tanpa section_id di claims tidak boleh lihat antrian
	locals := map[string]interface{}{
		"user_id": int64(5),
		"nama":    "Bu Sari",
		"role":    models.RoleTeacher,
	}
	app := newApp(fiber.MethodGet, "/queue", locals, GetQueue)

	code, _ := doJSON(t, app, fiber.MethodGet, "/queue", nil)
	assert.Equal(t, fiber.StatusForbidden, code)
}
