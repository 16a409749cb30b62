package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/models"
	"backend-penjemputan/internal/realtime"
	"log"

	"github.com/gofiber/fiber/v2"
)

// fanOutNotification tulis satu baris notifikasi + emit event. Best-effort:
// gagal di-log, tidak pernah membatalkan aksi yang sudah commit.
func fanOutNotification(senderID, recipientID int64, notifType, title, message string) {
	res, err := config.DB.Exec(`
		INSERT INTO notifications
		(sender_id, recipient_id, type, title, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, NOW())
	`, senderID, recipientID, notifType, title, message)

	if err != nil {
		log.Printf("[notif] insert recipient %d: %v", recipientID, err)
		return
	}

	id, _ := res.LastInsertId()
	realtime.Emit(realtime.EventNotificationCreated, fiber.Map{
		"notification_id": id,
		"recipient_id":    recipientID,
		"type":            notifType,
		"title":           title,
		"message":         message,
	})
}

// GetNotifications - Inbox milik user yang login, terbaru dulu.
func GetNotifications(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)

	rows, err := config.DB.Query(`
		SELECT id, sender_id, recipient_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = ?
		ORDER BY id DESC
		LIMIT 100
	`, userID)
	if err != nil {
		log.Printf("[notif] list user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal mengambil notifikasi",
		})
	}
	defer rows.Close()

	result := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.SenderID, &n.RecipientID, &n.Type,
			&n.Title, &n.Message, &n.IsRead, &n.CreatedAt,
		); err != nil {
			log.Printf("[notif] scan error: %v", err)
			continue
		}
		result = append(result, n)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// MarkNotificationRead - Hanya recipient yang boleh tandai read.
func MarkNotificationRead(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int64)
	notifID := c.Params("id")

	res, err := config.DB.Exec(`
		UPDATE notifications
		SET is_read = 1
		WHERE id = ? AND recipient_id = ?
	`, notifID, userID)
	if err != nil {
		log.Printf("[notif] mark read %s: %v", notifID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Gagal update notifikasi",
		})
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Notifikasi tidak ditemukan",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Notifikasi ditandai sudah dibaca",
	})
}
