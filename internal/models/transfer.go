package models

import "time"

const (
	PurposeDropOff = "Drop off"
	PurposePickUp  = "Pick up"
)

/*
|--------------------------------------------------------------------------
| DATABASE MODEL (INTERNAL)
|--------------------------------------------------------------------------
| Ledger append-only. UNIQUE KEY (student_id, transfer_date, purpose) di
| level DB adalah duplicate-guard utama: insert kedua untuk triple yang
| sama kena error 1062, bukan read-then-write.
*/
type Transfer struct {
	ID           int64     `json:"id"`
	StudentID    int64     `json:"student_id"`
	SectionID    int64     `json:"section_id"`
	GuardianID   *int64    `json:"guardian_id"`
	GuardianName string    `json:"guardian_name"`
	Purpose      string    `json:"purpose"`
	TransferDate string    `json:"transfer_date"`
	TransferTime string    `json:"transfer_time"`
	CreatedAt    time.Time `json:"created_at"`
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
| Purpose tidak pernah diambil dari client — selalu dari pass yang di-scan.
*/
type CommitTransferRequest struct {
	Token      string `json:"token" validate:"required"`
	StudentID  int64  `json:"student_id" validate:"required"`
	GuardianID int64  `json:"guardian_id" validate:"required"`
}
