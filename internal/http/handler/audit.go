package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/helper"
	"backend-penjemputan/internal/models"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// appendAudit tulis satu baris audit append-only. Best-effort sink:
// gagal cuma di-log, aksi yang sudah commit tidak di-rollback.
func appendAudit(actorID int64, actorRole, action, target string) {
	id, err := helper.NextSequence("audit_id", helper.FloorDefault)
	if err != nil {
		log.Printf("[audit] next sequence: %v", err)
		return
	}

	_, err = config.DB.Exec(`
		INSERT INTO audits (id, actor_id, actor_role, action, target, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`, id, actorID, actorRole, action, target)

	if err != nil {
		log.Printf("[audit] insert %s: %v", action, err)
	}
}

// GetAudits - Reader untuk superadmin, terbaru dulu, paginated.
func GetAudits(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	rows, err := config.DB.Query(`
		SELECT id, actor_id, actor_role, action, target, created_at
		FROM audits
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		log.Printf("[audit] list: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil audit",
		})
	}
	defer rows.Close()

	result := []models.Audit{}
	for rows.Next() {
		var a models.Audit
		if err := rows.Scan(&a.ID, &a.ActorID, &a.ActorRole, &a.Action, &a.Target, &a.CreatedAt); err != nil {
			log.Printf("[audit] scan error: %v", err)
			continue
		}
		result = append(result, a)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}
