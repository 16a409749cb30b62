package models

import "time"

// Pass hidup 10 menit sejak issued. Key Redis dipasang TTL 15 menit
// (window + grace) jadi garbage collection jalan sendiri.
const (
	PassValidity = 10 * time.Minute
	PassTTL      = 15 * time.Minute
)

/*
|--------------------------------------------------------------------------
| REDIS MODEL
|--------------------------------------------------------------------------
| Immutable setelah issued kecuali flag Used, yang flip false->true sekali
| saja oleh Transfer Recorder setelah insert transfer sukses.
*/
type Pass struct {
	Token      string    `json:"token"`
	GuardianID int64     `json:"guardian_id"`
	StudentID  int64     `json:"student_id"`
	Purpose    string    `json:"purpose"`
	IssuedAt   time.Time `json:"issued_at"`
	Used       bool      `json:"used"`
}

// Expired cek window validitas relatif ke now (soft timeout, dicek saat
// read, tidak ada mutasi).
func (p Pass) Expired(now time.Time) bool {
	return now.Sub(p.IssuedAt) > PassValidity
}

/*
|--------------------------------------------------------------------------
| REQUEST
|--------------------------------------------------------------------------
*/
type IssuePassRequest struct {
	// Wajib kalau guardian punya lebih dari satu anak ter-link.
	StudentID int64 `json:"student_id"`
}

/*
|--------------------------------------------------------------------------
| RESPONSE DTO
|--------------------------------------------------------------------------
*/
type IssuePassResponse struct {
	Token    string `json:"token"`
	Purpose  string `json:"purpose"`
	IssuedAt string `json:"issued_at"`
	Restored bool   `json:"restored"`
}

// PassResolveResponse adalah hasil scan gerbang: konteks lengkap tanpa
// mutasi apa pun, supaya preview bisa diulang-ulang.
type PassResolveResponse struct {
	Valid        bool   `json:"valid"`
	Reason       string `json:"reason,omitempty"`
	Token        string `json:"token,omitempty"`
	Purpose      string `json:"purpose,omitempty"`
	IssuedAt     string `json:"issued_at,omitempty"`
	GuardianID   int64  `json:"guardian_id,omitempty"`
	GuardianName string `json:"guardian_name,omitempty"`
	StudentID    int64  `json:"student_id,omitempty"`
	StudentName  string `json:"student_name,omitempty"`
	SectionID    *int64 `json:"section_id,omitempty"`
	SectionName  string `json:"section_name,omitempty"`
}
