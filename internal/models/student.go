package models

import (
	"database/sql"
	"time"
)

// Status murid adalah single source of truth posisi anak saat ini.
// Hanya Transfer Recorder yang boleh mengubahnya (plus daily reset job).
const (
	StatusOnTheWay  = "On the way"
	StatusLearning  = "Learning"
	StatusDismissed = "Dismissed"
)

type Student struct {
	ID          int64         `json:"id"`
	StudentCode string        `json:"student_code"`
	Nama        string        `json:"nama"`
	Status      string        `json:"status"`
	SectionID   sql.NullInt64 `json:"-"`
	IsArchived  string        `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type StudentResponse struct {
	ID          int64  `json:"id"`
	StudentCode string `json:"student_code"`
	Nama        string `json:"nama"`
	Status      string `json:"status"`
	SectionID   *int64 `json:"section_id,omitempty"`
	SectionName string `json:"section_name,omitempty"`
}

func ToStudentResponse(s Student) StudentResponse {
	var sectionID *int64
	if s.SectionID.Valid {
		sectionID = &s.SectionID.Int64
	}

	return StudentResponse{
		ID:          s.ID,
		StudentCode: s.StudentCode,
		Nama:        s.Nama,
		Status:      s.Status,
		SectionID:   sectionID,
	}
}
