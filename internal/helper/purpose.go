package helper

import (
	"backend-penjemputan/internal/config"
	"backend-penjemputan/internal/models"
)

// DerivePurpose tentukan arah transfer hari ini untuk satu murid dari
// ledger, bukan dari client: kalau sudah ada "Drop off" tercatat hari ini,
// berikutnya pasti "Pick up". Client tidak pernah bisa spoof purpose.
func DerivePurpose(studentID int64) (string, error) {
	var count int
	err := config.DB.QueryRow(`
		SELECT COUNT(*)
		FROM transfers
		WHERE student_id = ?
		AND transfer_date = ?
		AND purpose = ?
	`, studentID, config.Today(), models.PurposeDropOff).Scan(&count)

	if err != nil {
		return "", err
	}

	if count > 0 {
		return models.PurposePickUp, nil
	}
	return models.PurposeDropOff, nil
}
