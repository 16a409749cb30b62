package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/helper"
	"backend-penjemputan/internal/models"
	"backend-penjemputan/internal/realtime"
	"backend-penjemputan/internal/store"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
)

var ErrDuplicateTransfer = errors.New("transfer duplikat untuk murid+tanggal+purpose")

// transferInput adalah data yang dibutuhkan insert ledger + side effects.
// Dipakai jalur pass (CommitTransfer) dan jalur override (ApproveOverride).
type transferInput struct {
	StudentID    int64
	SectionID    int64
	GuardianID   *int64
	GuardianName string
	Purpose      string
	When         time.Time
	ActorID      int64
	ActorRole    string
	ActorName    string
}

// CommitTransfer - Gate operator konfirmasi serah terima. Urutan check
// fail-fast, tanpa partial write:
//  1. pass ada, belum used, masih dalam window
//  2. operator section-scoped harus pegang section murid
//  3. harus ada queue entry hidup untuk {guardian, murid}
//  4. belum ada transfer {murid, hari ini, purpose} — di-enforce UNIQUE KEY
//     saat insert, bukan read-then-write
//
// Insert transfer adalah commit point. Step sesudahnya (status murid, burn
// pass, clear queue, notif, audit, event) best-effort dan bisa di-derive
// ulang dari baris transfer; gagal di tengah tidak bikin transfer kedua
// karena duplicate-guard.
func CommitTransfer(c *fiber.Ctx) error {
	operatorID := c.Locals("user_id").(int64)
	operatorRole := c.Locals("role").(string)
	operatorName := c.Locals("nama").(string)

	var req models.CommitTransferRequest
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

	// CHECK 1: pass valid
	pass, err := store.GetPassByToken(req.Token)
	if err == store.ErrPassNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Pass tidak ditemukan atau sudah kadaluarsa",
		})
	}
	if err != nil {
		log.Printf("[transfer] get pass: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membaca pass",
		})
	}

	if pass.Used {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Pass sudah dipakai",
		})
	}

	now := config.NowLocal()
	if pass.Expired(now) {
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"success": false,
			"error":   "Pass sudah kadaluarsa",
		})
	}

	// Binding pass harus cocok dengan request — token orang lain ditolak
	if pass.GuardianID != req.GuardianID || pass.StudentID != req.StudentID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Pass tidak cocok dengan guardian/murid ini",
		})
	}

	// CHECK 2: otoritas section operator
	var studentSectionID sql.NullInt64
	var studentName string
	err = config.DB.QueryRow(
		"SELECT section_id, nama FROM students WHERE id = ?",
		pass.StudentID,
	).Scan(&studentSectionID, &studentName)

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

	if operatorRole == models.RoleTeacher {
		operatorSectionID, ok := c.Locals("section_id").(int64)
		if !ok || !studentSectionID.Valid || operatorSectionID != studentSectionID.Int64 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Bukan murid dari section Anda",
			})
		}
	}

	// CHECK 3: guardian sudah declare kedatangan
	var onQueue bool
	err = config.DB.QueryRow(`
		SELECT on_queue FROM queue_entries
		WHERE guardian_id = ? AND student_id = ?
	`, pass.GuardianID, pass.StudentID).Scan(&onQueue)

	if err == sql.ErrNoRows || (err == nil && !onQueue) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Guardian belum declare kedatangan di antrian",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal cek antrian",
		})
	}

	// CHECK 4 + COMMIT POINT: insert ledger, duplicate kena UNIQUE KEY
	guardianID := pass.GuardianID
	input := transferInput{
		StudentID:    pass.StudentID,
		SectionID:    studentSectionID.Int64,
		GuardianID:   &guardianID,
		GuardianName: helper.GetUserName(pass.GuardianID),
		Purpose:      pass.Purpose,
		When:         now,
		ActorID:      operatorID,
		ActorRole:    operatorRole,
		ActorName:    operatorName,
	}

	transferID, err := insertTransfer(config.DB, input)
	if err == ErrDuplicateTransfer {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Duplikat: transfer untuk murid ini sudah tercatat hari ini",
		})
	}
	if err != nil {
		log.Printf("[transfer] insert: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mencatat transfer",
		})
	}

	// Pass dibakar hanya setelah insert sukses
	if err := store.MarkPassUsed(pass.Token); err != nil {
		log.Printf("[transfer] mark pass used %s: %v", pass.Token, err)
	}

	applyTransferSideEffects(transferID, input, studentName)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Transfer %s untuk %s berhasil dicatat", input.Purpose, studentName),
		"data": fiber.Map{
			"transfer_id":   transferID,
			"student_id":    input.StudentID,
			"purpose":       input.Purpose,
			"transfer_date": input.When.Format("2006-01-02"),
			"transfer_time": input.When.Format("15:04:05"),
		},
	})
}

// execer dipenuhi *sql.DB dan *sql.Tx — jalur override insert ledger di
// dalam transaksi bareng flip status.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// insertTransfer alokasi ID sequential lalu insert baris ledger.
// MySQL error 1062 (duplicate key) = sudah ada transfer untuk
// {student, date, purpose} hari itu.
func insertTransfer(db execer, in transferInput) (int64, error) {
	id, err := helper.NextSequence("transfer_id", helper.FloorDefault)
	if err != nil {
		return 0, err
	}

	_, err = db.Exec(`
		INSERT INTO transfers
		(id, student_id, section_id, guardian_id, guardian_name, purpose, transfer_date, transfer_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`, id, in.StudentID, in.SectionID, in.GuardianID, in.GuardianName,
		in.Purpose, in.When.Format("2006-01-02"), in.When.Format("15:04:05"))

	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == 1062 {
			return 0, ErrDuplicateTransfer
		}
		return 0, err
	}

	return id, nil
}

// applyTransferSideEffects jalankan step (b)-(g): status murid, clear
// queue, notifikasi, audit, event realtime. Semua best-effort — gagal
// di-log, tidak pernah rollback transfer yang sudah commit.
func applyTransferSideEffects(transferID int64, in transferInput, studentName string) {
	// (b) advance status murid
	newStatus := models.StatusLearning
	if in.Purpose == models.PurposePickUp {
		newStatus = models.StatusDismissed
	}

	if _, err := config.DB.Exec(
		"UPDATE students SET status = ?, updated_at = NOW() WHERE id = ?",
		newStatus, in.StudentID,
	); err != nil {
		log.Printf("[transfer] update status murid %d: %v", in.StudentID, err)
	} else {
		realtime.Emit(realtime.EventStudentStatusChanged, fiber.Map{
			"student_id": in.StudentID,
			"status":     newStatus,
		})
	}

	// (d) clear queue entry
	if in.GuardianID != nil {
		if err := clearQueueEntry(*in.GuardianID, in.StudentID); err != nil {
			log.Printf("[transfer] clear queue guardian %d: %v", *in.GuardianID, err)
		} else {
			realtime.Emit(realtime.EventQueueEntryRemoved, fiber.Map{
				"guardian_id": *in.GuardianID,
				"student_id":  in.StudentID,
			})
		}
	}

	// (e) fan-out notifikasi ke semua guardian ter-link
	title := fmt.Sprintf("%s tercatat", in.Purpose)
	message := fmt.Sprintf("%s: %s oleh %s pukul %s",
		studentName, in.Purpose, in.GuardianName, in.When.Format("15:04"))

	guardians, err := helper.LinkedGuardians(in.StudentID)
	if err != nil {
		log.Printf("[transfer] lookup guardians murid %d: %v", in.StudentID, err)
	}
	for _, gid := range guardians {
		fanOutNotification(in.ActorID, gid, models.NotifTypeTransfer, title, message)
	}

	// (f) audit
	appendAudit(in.ActorID, in.ActorRole,
		fmt.Sprintf("commit transfer %s", in.Purpose),
		fmt.Sprintf("transfer #%d murid %s (%d)", transferID, studentName, in.StudentID))

	// (g) event transfer committed
	realtime.Emit(realtime.EventTransferCommitted, fiber.Map{
		"transfer_id":  transferID,
		"student_id":   in.StudentID,
		"student_name": studentName,
		"purpose":      in.Purpose,
		"date":         in.When.Format("2006-01-02"),
		"time":         in.When.Format("15:04:05"),
	})
}

// GetTodayTransfers - Ledger hari ini untuk dashboard gerbang. Teacher
// hanya lihat section-nya sendiri.
func GetTodayTransfers(c *fiber.Ctx) error {
	role := c.Locals("role").(string)

	query := `
		SELECT t.id, t.student_id, s.nama, t.section_id, t.guardian_id,
		       t.guardian_name, t.purpose,
		       DATE_FORMAT(t.transfer_date, '%Y-%m-%d'),
		       TIME_FORMAT(t.transfer_time, '%H:%i:%s')
		FROM transfers t
		JOIN students s ON t.student_id = s.id
		WHERE t.transfer_date = ?
	`
	args := []interface{}{config.Today()}

	if role == models.RoleTeacher {
		sectionID, ok := c.Locals("section_id").(int64)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "User tidak memiliki section",
			})
		}
		query += " AND t.section_id = ?"
		args = append(args, sectionID)
	}

	query += " ORDER BY t.id DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		log.Printf("[transfer] list today: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil transfer",
		})
	}
	defer rows.Close()

	type row struct {
		ID           int64  `json:"id"`
		StudentID    int64  `json:"student_id"`
		StudentName  string `json:"student_name"`
		SectionID    int64  `json:"section_id"`
		GuardianID   *int64 `json:"guardian_id"`
		GuardianName string `json:"guardian_name"`
		Purpose      string `json:"purpose"`
		TransferDate string `json:"transfer_date"`
		TransferTime string `json:"transfer_time"`
	}

	result := []row{}
	for rows.Next() {
		var r row
		var gid sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.StudentID, &r.StudentName, &r.SectionID, &gid,
			&r.GuardianName, &r.Purpose, &r.TransferDate, &r.TransferTime,
		); err != nil {
			log.Printf("[transfer] scan error: %v", err)
			continue
		}
		if gid.Valid {
			r.GuardianID = &gid.Int64
		}
		result = append(result, r)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
