package handler

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/helper"
	"backend-penjemputan/internal/models"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := helper.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": helper.ValidationMessage(err),
		})
	}

	if req.RecaptchaToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "reCAPTCHA token tidak valid",
		})
	}

	ok, score, err := config.VerifyRecaptcha(req.RecaptchaToken)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Gagal verifikasi reCAPTCHA",
		})
	}

	if !ok || score < 0.5 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Aktivitas mencurigakan terdeteksi",
		})
	}

	var user models.User
	query := `SELECT id, nama, email, password, role, is_banned, section_id
	          FROM users WHERE email = ?`
	err = config.DB.QueryRow(query, req.Email).Scan(
		&user.ID,
		&user.Nama,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.IsBanned,
		&user.SectionID,
	)

	if err == sql.ErrNoRows {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Email atau password salah",
		})
	}

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Database error",
		})
	}

	if user.IsBanned == "y" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Akun Anda telah diblokir",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Email atau password salah",
		})
	}

	var sectionID *int64
	if user.SectionID.Valid {
		sectionID = &user.SectionID.Int64
	}

	token, err := config.GenerateToken(user.ID, user.Nama, user.Email, user.Role, sectionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate token",
		})
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"user":    models.ToUserResponse(user),
		"message": "Login berhasil! Selamat datang kembali, " + user.Nama,
	})
}
