package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/helper"
	"backend-penjemputan/internal/models"
	"backend-penjemputan/internal/realtime"
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
)

// DeclareQueue - Guardian menyatakan niat jemput/antar. Upsert keyed
// guardian_id: declare kedua menimpa yang pertama (niat terbaru menang).
func DeclareQueue(c *fiber.Ctx) error {
	guardianID := c.Locals("user_id").(int64)

	var req models.DeclareQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body",
		})
	}

	if err := helper.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   helper.ValidationMessage(err),
		})
	}

	// Murid harus ter-link ke guardian ini
	if _, err := helper.ResolveStudentForGuardian(guardianID, req.StudentID); err != nil {
		if err == helper.ErrNoStudent || err == helper.ErrNotLinked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Murid tidak ter-link ke akun ini",
			})
		}
		log.Printf("[queue] resolve student guardian %d: %v", guardianID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal resolve murid",
		})
	}

	// Murid yang sudah Dismissed tidak bisa di-queue lagi hari ini
	var studentStatus, studentName string
	err := config.DB.QueryRow(
		"SELECT status, nama FROM students WHERE id = ?",
		req.StudentID,
	).Scan(&studentStatus, &studentName)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Murid tidak ditemukan",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal memvalidasi murid",
		})
	}

	if studentStatus == models.StatusDismissed {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Murid sudah dijemput hari ini, tidak bisa antri lagi",
		})
	}

	now := config.NowLocal()
	_, err = config.DB.Exec(`
		INSERT INTO queue_entries
		(guardian_id, student_id, section_id, purpose, status_label, on_queue, declared_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON DUPLICATE KEY UPDATE
			student_id = VALUES(student_id),
			section_id = VALUES(section_id),
			purpose = VALUES(purpose),
			status_label = VALUES(status_label),
			on_queue = 1,
			declared_at = VALUES(declared_at)
	`, guardianID, req.StudentID, req.SectionID, req.Purpose, req.StatusLabel, now)

	if err != nil {
		log.Printf("[queue] upsert entry guardian %d: %v", guardianID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menyimpan antrian",
		})
	}

	entry := models.QueueEntryView{
		GuardianID:   guardianID,
		GuardianName: c.Locals("nama").(string),
		StudentID:    req.StudentID,
		StudentName:  studentName,
		SectionID:    req.SectionID,
		Purpose:      req.Purpose,
		StatusLabel:  req.StatusLabel,
		DeclaredAt:   now.Format("2006-01-02 15:04:05"),
	}

	realtime.Emit(realtime.EventQueueEntryCreated, entry)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Antrian berhasil dicatat",
		"data":    entry,
	})
}

// GetQueue - List entry hidup (on_queue=1). Teacher hanya lihat murid di
// section-nya sendiri; super_admin lihat semua.
func GetQueue(c *fiber.Ctx) error {
	role := c.Locals("role").(string)

	query := `
		SELECT qe.guardian_id, g.nama, qe.student_id, s.nama,
		       qe.section_id, sec.nama_section, qe.purpose, qe.status_label,
		       qe.declared_at
		FROM queue_entries qe
		JOIN users g ON qe.guardian_id = g.id
		JOIN students s ON qe.student_id = s.id
		JOIN sections sec ON qe.section_id = sec.id
		WHERE qe.on_queue = 1
	`
	args := []interface{}{}

	if role == models.RoleTeacher {
		sectionID, ok := c.Locals("section_id").(int64)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "User tidak memiliki section",
			})
		}
		query += " AND s.section_id = ?"
		args = append(args, sectionID)
	}

	query += " ORDER BY qe.declared_at ASC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		log.Printf("[queue] list: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil antrian",
		})
	}
	defer rows.Close()

	entries := []models.QueueEntryView{}
	for rows.Next() {
		var e models.QueueEntryView
		var declaredAt sql.NullTime
		if err := rows.Scan(
			&e.GuardianID, &e.GuardianName,
			&e.StudentID, &e.StudentName,
			&e.SectionID, &e.SectionName,
			&e.Purpose, &e.StatusLabel,
			&declaredAt,
		); err != nil {
			log.Printf("[queue] scan error: %v", err)
			continue
		}
		if declaredAt.Valid {
			e.DeclaredAt = declaredAt.Time.Format("2006-01-02 15:04:05")
		}
		entries = append(entries, e)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries,
	})
}

// clearQueueEntry set on_queue=0. Dipanggil hanya dari commit transfer.
func clearQueueEntry(guardianID, studentID int64) error {
	_, err := config.DB.Exec(`
		UPDATE queue_entries
		SET on_queue = 0
		WHERE guardian_id = ? AND student_id = ?
	`, guardianID, studentID)
	return err
}
