package models

import (
	"database/sql"
	"time"
)

const (
	RoleGuardian   = "guardian"
	RoleTeacher    = "teacher"
	RoleSuperAdmin = "super_admin"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Dipakai untuk query ke DB. Teacher dengan wali kelas punya section_id,
| guardian dan super_admin tidak.
*/
type User struct {
	ID        int64
	Nama      string
	Email     string
	Password  string
	Role      string
	IsBanned  string
	SectionID sql.NullInt64
	CreatedAt time.Time
	UpdatedAt time.Time
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type LoginRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type UserResponse struct {
	ID        int64  `json:"id"`
	Nama      string `json:"nama"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	SectionID *int64 `json:"section_id,omitempty"`
}

func ToUserResponse(u User) UserResponse {
	var sectionID *int64

	if u.SectionID.Valid {
		sectionID = &u.SectionID.Int64
	}

	return UserResponse{
		ID:        u.ID,
		Nama:      u.Nama,
		Email:     u.Email,
		Role:      u.Role,
		SectionID: sectionID,
	}
}
