package models

import (
	"time"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Satu guardian maksimal satu entry hidup (PK guardian_id). Declare kedua
| menimpa yang pertama. on_queue di-clear hanya oleh Transfer Recorder.
*/
type QueueEntry struct {
	GuardianID  int64     `json:"guardian_id"`
	StudentID   int64     `json:"student_id"`
	SectionID   int64     `json:"section_id"`
	Purpose     string    `json:"purpose"`
	StatusLabel string    `json:"status_label"`
	OnQueue     bool      `json:"on_queue"`
	DeclaredAt  time.Time `json:"declared_at"`
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type DeclareQueueRequest struct {
	StudentID   int64  `json:"student_id" validate:"required"`
	SectionID   int64  `json:"section_id" validate:"required"`
	StatusLabel string `json:"status_label" validate:"required"`
	Purpose     string `json:"purpose" validate:"required,oneof='Drop off' 'Pick up'"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
| Entry yang sudah di-resolve nama guardian/murid/section untuk display
| antrian gerbang.
*/
type QueueEntryView struct {
	GuardianID   int64  `json:"guardian_id"`
	GuardianName string `json:"guardian_name"`
	StudentID    int64  `json:"student_id"`
	StudentName  string `json:"student_name"`
	SectionID    int64  `json:"section_id"`
	SectionName  string `json:"section_name"`
	Purpose      string `json:"purpose"`
	StatusLabel  string `json:"status_label"`
	DeclaredAt   string `json:"declared_at"`
}
