package handler

import (
	"backend-penjemputan/internal/config"
	"bytes"
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ExportTransfers - Download ledger transfer sebagai CSV untuk arsip/ops.
// Optional ?from=YYYY-MM-DD&to=YYYY-MM-DD, default 30 hari terakhir.
func ExportTransfers(c *fiber.Ctx) error {
	from := c.Query("from")
	to := c.Query("to")

	if from == "" {
		from = config.NowLocal().AddDate(0, 0, -30).Format("2006-01-02")
	}
	if to == "" {
		to = config.Today()
	}

	rows, err := config.DB.Query(`
		SELECT t.id, t.student_id, s.nama, t.section_id, t.guardian_id,
		       t.guardian_name, t.purpose,
		       DATE_FORMAT(t.transfer_date, '%Y-%m-%d'),
		       TIME_FORMAT(t.transfer_time, '%H:%i:%s')
		FROM transfers t
		JOIN students s ON t.student_id = s.id
		WHERE t.transfer_date BETWEEN ? AND ?
		ORDER BY t.id ASC
	`, from, to)
	if err != nil {
		log.Printf("[export] query: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Gagal query ledger",
		})
	}
	defer rows.Close()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{
		"id", "student_id", "student_name", "section_id",
		"guardian_id", "guardian_name", "purpose", "date", "time",
	})

	for rows.Next() {
		var (
			id, studentID, sectionID         int64
			guardianID                       sql.NullInt64
			studentName, guardianName        string
			purpose, transferDate, transferT string
		)
		if err := rows.Scan(
			&id, &studentID, &studentName, &sectionID, &guardianID,
			&guardianName, &purpose, &transferDate, &transferT,
		); err != nil {
			log.Printf("[export] scan error: %v", err)
			continue
		}

		gid := ""
		if guardianID.Valid {
			gid = strconv.FormatInt(guardianID.Int64, 10)
		}

		w.Write([]string{
			strconv.FormatInt(id, 10),
			strconv.FormatInt(studentID, 10),
			studentName,
			strconv.FormatInt(sectionID, 10),
			gid,
			guardianName,
			purpose,
			transferDate,
			transferT,
		})
	}
	w.Flush()

	if err := w.Error(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Gagal menulis CSV",
		})
	}

	fileName := fmt.Sprintf("transfers-%s.csv", time.Now().Format("20060102-150405"))
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Set("Content-Type", "text/csv")

	return c.Send(buf.Bytes())
}
