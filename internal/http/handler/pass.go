package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/helper"
	"backend-penjemputan/internal/models"
	"backend-penjemputan/internal/store"
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
)

// IssuePass - Endpoint guardian untuk minta gate pass.
// Purpose di-derive dari ledger hari ini, bukan dari client. Idempotent:
// pass {guardian, purpose} yang masih hidup dan belum used di-restore, bukan
// mint baru.
func IssuePass(c *fiber.Ctx) error {
	guardianID := c.Locals("user_id").(int64)

	var req models.IssuePassRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}
	}

	// 1. Resolve murid milik guardian (satu murid per aksi)
	studentID, err := helper.ResolveStudentForGuardian(guardianID, req.StudentID)
	if err == helper.ErrNoStudent {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Tidak ada murid ter-link ke akun ini",
		})
	}
	if err == helper.ErrAmbiguousStudent {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "Lebih dari satu murid ter-link, kirim student_id",
		})
	}
	if err == helper.ErrNotLinked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "Murid tidak ter-link ke akun ini",
		})
	}
	if err != nil {
		log.Printf("[pass] resolve student guardian %d: %v", guardianID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal resolve murid",
		})
	}

	// Pastikan murid masih ada
	var exists int
	err = config.DB.QueryRow("SELECT COUNT(*) FROM students WHERE id = ?", studentID).Scan(&exists)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal memvalidasi murid",
		})
	}
	if exists == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Murid tidak ditemukan",
		})
	}

	// 2. Derive purpose dari ledger hari ini
	purpose, err := helper.DerivePurpose(studentID)
	if err != nil {
		log.Printf("[pass] derive purpose student %d: %v", studentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menentukan purpose",
		})
	}

	now := config.NowLocal()

	// 3. Restore pass yang masih hidup kalau ada
	if existing, err := store.FindActivePass(guardianID, purpose); err == nil {
		if !existing.Expired(now) {
			return c.JSON(fiber.Map{
				"success": true,
				"message": "Pass masih berlaku, dipakai ulang",
				"data": models.IssuePassResponse{
					Token:    existing.Token,
					Purpose:  existing.Purpose,
					IssuedAt: existing.IssuedAt.Format("2006-01-02 15:04:05"),
					Restored: true,
				},
			})
		}
	} else if err != store.ErrPassNotFound {
		log.Printf("[pass] find active guardian %d: %v", guardianID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal cek pass aktif",
		})
	}

	// 4. Mint token baru
	token, err := helper.GeneratePassToken()
	if err != nil {
		log.Printf("[pass] generate token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membuat token",
		})
	}

	pass := models.Pass{
		Token:      token,
		GuardianID: guardianID,
		StudentID:  studentID,
		Purpose:    purpose,
		IssuedAt:   now,
		Used:       false,
	}

	if err := store.SavePass(pass); err != nil {
		log.Printf("[pass] save pass guardian %d: %v", guardianID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal menyimpan pass",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Pass berhasil dibuat",
		"data": models.IssuePassResponse{
			Token:    pass.Token,
			Purpose:  pass.Purpose,
			IssuedAt: pass.IssuedAt.Format("2006-01-02 15:04:05"),
			Restored: false,
		},
	})
}

// ResolvePass - Scan/preview pass di gerbang. Read-only dan repeatable:
// tidak pernah flip used, UI konfirmasi boleh scan berkali-kali.
func ResolvePass(c *fiber.Ctx) error {
	token := c.Params("token")

	pass, err := store.GetPassByToken(token)
	if err == store.ErrPassNotFound {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"data":    models.PassResolveResponse{Valid: false, Reason: "missing"},
		})
	}
	if err != nil {
		log.Printf("[pass] resolve token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal membaca pass",
		})
	}

	if pass.Expired(config.NowLocal()) {
		return c.Status(fiber.StatusGone).JSON(fiber.Map{
			"success": false,
			"data":    models.PassResolveResponse{Valid: false, Reason: "expired"},
		})
	}

	if pass.Used {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"data":    models.PassResolveResponse{Valid: false, Reason: "used"},
		})
	}

	// Resolve konteks guardian + murid + section
	resp := models.PassResolveResponse{
		Valid:      true,
		Token:      pass.Token,
		Purpose:    pass.Purpose,
		IssuedAt:   pass.IssuedAt.Format("2006-01-02 15:04:05"),
		GuardianID: pass.GuardianID,
		StudentID:  pass.StudentID,
	}

	resp.GuardianName = helper.GetUserName(pass.GuardianID)

	var sectionID sql.NullInt64
	var sectionName sql.NullString
	err = config.DB.QueryRow(`
		SELECT s.nama, s.section_id, sec.nama_section
		FROM students s
		LEFT JOIN sections sec ON s.section_id = sec.id
		WHERE s.id = ?
	`, pass.StudentID).Scan(&resp.StudentName, &sectionID, &sectionName)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Murid tidak ditemukan",
		})
	}
	if err != nil {
		log.Printf("[pass] resolve student %d: %v", pass.StudentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal resolve murid",
		})
	}

	if sectionID.Valid {
		resp.SectionID = &sectionID.Int64
	}
	if sectionName.Valid {
		resp.SectionName = sectionName.String
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    resp,
	})
}
