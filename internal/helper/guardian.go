package helper

import (
	"backend-penjemputan/internal/config"
	"database/sql"
	"errors"
	"log"
)

var (
	ErrNoStudent        = errors.New("guardian tidak punya murid ter-link")
	ErrAmbiguousStudent = errors.New("guardian punya lebih dari satu murid, student_id wajib diisi")
	ErrNotLinked        = errors.New("murid tidak ter-link ke guardian ini")
)

// ResolveStudentForGuardian pilih murid untuk aksi pass/queue. Flow
// dismissal mengasumsikan satu murid per aksi: kalau guardian punya
// beberapa anak, client wajib kirim student_id eksplisit.
func ResolveStudentForGuardian(guardianID, requestedStudentID int64) (int64, error) {
	rows, err := config.DB.Query(
		"SELECT student_id FROM guardian_students WHERE guardian_id = ?",
		guardianID,
	)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var linked []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		linked = append(linked, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(linked) == 0 {
		return 0, ErrNoStudent
	}

	if requestedStudentID == 0 {
		if len(linked) > 1 {
			return 0, ErrAmbiguousStudent
		}
		return linked[0], nil
	}

	for _, id := range linked {
		if id == requestedStudentID {
			return id, nil
		}
	}
	return 0, ErrNotLinked
}

// LinkedGuardians return semua guardian yang ter-link ke murid, untuk
// fan-out notifikasi.
func LinkedGuardians(studentID int64) ([]int64, error) {
	rows, err := config.DB.Query(
		"SELECT guardian_id FROM guardian_students WHERE student_id = ?",
		studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetUserName lookup nama user, fallback "-" kalau tidak ketemu.
func GetUserName(userID int64) string {
	var nama string
	err := config.DB.QueryRow("SELECT nama FROM users WHERE id = ?", userID).Scan(&nama)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[helper] lookup nama user %d: %v", userID, err)
		}
		return "-"
	}
	return nama
}
