package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/helper"
	"backend-penjemputan/internal/models"
	"backend-penjemputan/internal/realtime"
	"database/sql"
	"fmt"
	"log"
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestOverride - Gate operator minta exception untuk guardian tanpa
// pass: guardian terdaftar (guardian_id) ATAU tamu (guest_name + foto
// identitas). Tepat satu jalur, dua-duanya atau tidak sama sekali ditolak.
func RequestOverride(c *fiber.Ctx) error {
	operatorID := c.Locals("user_id").(int64)
	operatorRole := c.Locals("role").(string)

	var req models.OverrideRequest
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

	hasGuardian := req.GuardianID != 0
	hasGuest := req.GuestName != "" && req.IDPhotoPath != ""
	if hasGuardian == hasGuest {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Isi guardian_id ATAU guest_name+id_photo_path, tepat satu",
		})
	}

	var studentName string
	err := config.DB.QueryRow("SELECT nama FROM students WHERE id = ?", req.StudentID).Scan(&studentName)
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

	id, err := helper.NextSequence("override_id", helper.FloorDefault)
	if err != nil {
		log.Printf("[override] next sequence: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal alokasi ID override",
		})
	}

	var guardianID sql.NullInt64
	var guestName, photoPath sql.NullString
	if hasGuardian {
		guardianID = sql.NullInt64{Int64: req.GuardianID, Valid: true}
	} else {
		guestName = sql.NullString{String: req.GuestName, Valid: true}
		// Foto disimpan ulang dengan nama uuid supaya path tidak bisa ditebak
		ext := path.Ext(req.IDPhotoPath)
		photoPath = sql.NullString{
			String: fmt.Sprintf("uploads/overrides/%s%s", uuid.NewString(), ext),
			Valid:  true,
		}
	}

	now := config.NowLocal()
	_, err = config.DB.Exec(`
		INSERT INTO overrides
		(id, requester_id, student_id, purpose, guardian_id, guest_name, id_photo_path, status, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, operatorID, req.StudentID, req.Purpose, guardianID, guestName, photoPath,
		models.OverridePending, now)

	if err != nil {
		log.Printf("[override] insert: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menyimpan override request",
		})
	}

	appendAudit(operatorID, operatorRole, "request override",
		fmt.Sprintf("override #%d murid %s (%d) purpose %s", id, studentName, req.StudentID, req.Purpose))

	realtime.Emit(realtime.EventOverrideRequested, fiber.Map{
		"override_id":  id,
		"requester_id": operatorID,
		"student_id":   req.StudentID,
		"student_name": studentName,
		"purpose":      req.Purpose,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Override request dicatat, menunggu approval",
		"data": fiber.Map{
			"override_id": id,
			"status":      models.OverridePending,
		},
	})
}

// GetOverrides - List override, terbaru dulu. Filter ?status=pending.
func GetOverrides(c *fiber.Ctx) error {
	query := `
		SELECT o.id, o.requester_id, o.student_id, s.nama, o.purpose,
		       o.guardian_id, o.guest_name, o.id_photo_path, o.status, o.requested_at
		FROM overrides o
		JOIN students s ON o.student_id = s.id
	`
	args := []interface{}{}

	if status := c.Query("status"); status != "" {
		query += " WHERE o.status = ?"
		args = append(args, status)
	}

	query += " ORDER BY o.id DESC"

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		log.Printf("[override] list: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil override",
		})
	}
	defer rows.Close()

	result := []models.OverrideResponse{}
	for rows.Next() {
		var o models.Override
		var studentName string
		if err := rows.Scan(
			&o.ID, &o.RequesterID, &o.StudentID, &studentName, &o.Purpose,
			&o.GuardianID, &o.GuestName, &o.IDPhotoPath, &o.Status, &o.RequestedAt,
		); err != nil {
			log.Printf("[override] scan error: %v", err)
			continue
		}

		resp := models.ToOverrideResponse(o)
		resp.StudentName = studentName
		if o.GuardianID.Valid {
			resp.GuardianName = helper.GetUserName(o.GuardianID.Int64)
		}
		result = append(result, resp)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// ApproveOverride - Approval terminal. Flip status dan insert transfer
// jalan dalam satu transaksi DB: kalau ledger menolak (duplicate hari ini),
// status balik pending dan tidak ada transfer tambahan. Conditional UPDATE
// (WHERE status='pending') bikin dua approver concurrent resolve ke satu
// pemenang.
// Transfer memakai timestamp request aslinya, bukan waktu approval.
func ApproveOverride(c *fiber.Ctx) error {
	approverID := c.Locals("user_id").(int64)
	approverRole := c.Locals("role").(string)
	approverName := c.Locals("nama").(string)
	overrideID := c.Params("id")

	ov, status, errResp := loadOverride(c, overrideID)
	if errResp != nil {
		return errResp(c)
	}
	if status != models.OverridePending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Override sudah %s, tidak bisa diubah", status),
		})
	}

	// Requester tidak boleh approve request-nya sendiri
	if ov.RequesterID == approverID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak bisa approve request Anda sendiri",
		})
	}

	var studentSectionID sql.NullInt64
	var studentName string
	err := config.DB.QueryRow(
		"SELECT section_id, nama FROM students WHERE id = ?",
		ov.StudentID,
	).Scan(&studentSectionID, &studentName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal memvalidasi murid",
		})
	}

	guardianName := "-"
	var guardianID *int64
	if ov.GuardianID.Valid {
		gid := ov.GuardianID.Int64
		guardianID = &gid
		guardianName = helper.GetUserName(gid)
	} else if ov.GuestName.Valid {
		guardianName = ov.GuestName.String + " (tamu)"
	}

	input := transferInput{
		StudentID:    ov.StudentID,
		SectionID:    studentSectionID.Int64,
		GuardianID:   guardianID,
		GuardianName: guardianName,
		Purpose:      ov.Purpose,
		When:         ov.RequestedAt,
		ActorID:      approverID,
		ActorRole:    approverRole,
		ActorName:    approverName,
	}

	tx, err := config.DB.Begin()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal memulai transaksi",
		})
	}

	res, err := tx.Exec(`
		UPDATE overrides
		SET status = ?, resolved_by = ?, resolved_at = NOW()
		WHERE id = ? AND status = ?
	`, models.OverrideApproved, approverID, ov.ID, models.OverridePending)
	if err != nil {
		tx.Rollback()
		log.Printf("[override] approve %d: %v", ov.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal approve override",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		tx.Rollback()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Override sudah diproses approver lain",
		})
	}

	transferID, err := insertTransfer(tx, input)
	if err != nil {
		tx.Rollback()
		if err == ErrDuplicateTransfer {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"error":   "Duplikat: transfer untuk murid ini sudah tercatat hari ini",
			})
		}
		log.Printf("[override] insert transfer override %d: %v", ov.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mencatat transfer",
		})
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[override] commit tx override %d: %v", ov.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal commit transaksi",
		})
	}

	applyTransferSideEffects(transferID, input, studentName)

	appendAudit(approverID, approverRole, "approve override",
		fmt.Sprintf("override #%d -> transfer #%d murid %s", ov.ID, transferID, studentName))

	realtime.Emit(realtime.EventOverrideProcessed, fiber.Map{
		"override_id": ov.ID,
		"status":      models.OverrideApproved,
		"transfer_id": transferID,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Override di-approve, transfer tercatat",
		"data": fiber.Map{
			"override_id": ov.ID,
			"status":      models.OverrideApproved,
			"transfer_id": transferID,
		},
	})
}

// RejectOverride - Penolakan terminal, tanpa transfer.
func RejectOverride(c *fiber.Ctx) error {
	approverID := c.Locals("user_id").(int64)
	approverRole := c.Locals("role").(string)
	overrideID := c.Params("id")

	ov, status, errResp := loadOverride(c, overrideID)
	if errResp != nil {
		return errResp(c)
	}
	if status != models.OverridePending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Override sudah %s, tidak bisa diubah", status),
		})
	}

	if ov.RequesterID == approverID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak bisa reject request Anda sendiri",
		})
	}

	res, err := config.DB.Exec(`
		UPDATE overrides
		SET status = ?, resolved_by = ?, resolved_at = NOW()
		WHERE id = ? AND status = ?
	`, models.OverrideRejected, approverID, ov.ID, models.OverridePending)
	if err != nil {
		log.Printf("[override] reject %d: %v", ov.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal reject override",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Override sudah diproses approver lain",
		})
	}

	appendAudit(approverID, approverRole, "reject override",
		fmt.Sprintf("override #%d murid %d", ov.ID, ov.StudentID))

	realtime.Emit(realtime.EventOverrideProcessed, fiber.Map{
		"override_id": ov.ID,
		"status":      models.OverrideRejected,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Override ditolak",
		"data": fiber.Map{
			"override_id": ov.ID,
			"status":      models.OverrideRejected,
		},
	})
}

// loadOverride ambil satu override by path param. Return closure error
// response supaya caller bisa early-return dengan status yang tepat.
func loadOverride(c *fiber.Ctx, id string) (models.Override, string, func(*fiber.Ctx) error) {
	var ov models.Override
	err := config.DB.QueryRow(`
		SELECT id, requester_id, student_id, purpose, guardian_id, guest_name,
		       id_photo_path, status, requested_at
		FROM overrides WHERE id = ?
	`, id).Scan(
		&ov.ID, &ov.RequesterID, &ov.StudentID, &ov.Purpose, &ov.GuardianID,
		&ov.GuestName, &ov.IDPhotoPath, &ov.Status, &ov.RequestedAt,
	)

	if err == sql.ErrNoRows {
		return ov, "", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"error":   "Override tidak ditemukan",
			})
		}
	}
	if err != nil {
		log.Printf("[override] load %s: %v", id, err)
		return ov, "", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Gagal mengambil override",
			})
		}
	}

	return ov, ov.Status, nil
}
