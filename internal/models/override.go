package models

import (
	"database/sql"
	"time"
)

// Outcome override disimpan satu kolom enum, bukan dua boolean, supaya
// state ilegal approved+rejected tidak mungkin ada. Transisi hanya
// pending->approved atau pending->rejected, dua-duanya terminal.
const (
	OverridePending  = "pending"
	OverrideApproved = "approved"
	OverrideRejected = "rejected"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Exception request: guardian terdaftar yang tidak pegang pass, atau tamu
| (nama + foto identitas). Tepat satu dari dua jalur itu yang terisi.
*/
type Override struct {
	ID          int64
	RequesterID int64
	StudentID   int64
	Purpose     string
	GuardianID  sql.NullInt64
	GuestName   sql.NullString
	IDPhotoPath sql.NullString
	Status      string
	RequestedAt time.Time
	ResolvedBy  sql.NullInt64
	ResolvedAt  sql.NullTime
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type OverrideRequest struct {
	StudentID   int64  `json:"student_id" validate:"required"`
	Purpose     string `json:"purpose" validate:"required,oneof='Drop off' 'Pick up'"`
	GuardianID  int64  `json:"guardian_id"`
	GuestName   string `json:"guest_name"`
	IDPhotoPath string `json:"id_photo_path"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type OverrideResponse struct {
	ID           int64  `json:"id"`
	RequesterID  int64  `json:"requester_id"`
	StudentID    int64  `json:"student_id"`
	StudentName  string `json:"student_name,omitempty"`
	Purpose      string `json:"purpose"`
	GuardianID   *int64 `json:"guardian_id,omitempty"`
	GuardianName string `json:"guardian_name,omitempty"`
	GuestName    string `json:"guest_name,omitempty"`
	IDPhotoPath  string `json:"id_photo_path,omitempty"`
	Status       string `json:"status"`
	RequestedAt  string `json:"requested_at"`
}

func ToOverrideResponse(o Override) OverrideResponse {
	resp := OverrideResponse{
		ID:          o.ID,
		RequesterID: o.RequesterID,
		StudentID:   o.StudentID,
		Purpose:     o.Purpose,
		Status:      o.Status,
		RequestedAt: o.RequestedAt.Format("2006-01-02 15:04:05"),
	}

	if o.GuardianID.Valid {
		resp.GuardianID = &o.GuardianID.Int64
	}
	if o.GuestName.Valid {
		resp.GuestName = o.GuestName.String
	}
	if o.IDPhotoPath.Valid {
		resp.IDPhotoPath = o.IDPhotoPath.String
	}

	return resp
}
