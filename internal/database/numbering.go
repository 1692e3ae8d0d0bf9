package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// NextDocumentNumber draws the next number in a day-scoped sequence via an
// atomic upsert, inside the caller's transaction. Unlike scanning for the
// highest existing number, concurrent callers each get a distinct sequence
// value; the unique index on the document number column is a backstop, not
// the mechanism.
//
// scope "order" yields SC-YYYYMMDD-0001, scope "po" yields PO-YYYYMMDD-001.
func NextDocumentNumber(tx *gorm.DB, scope string, now time.Time) (string, error) {
	day := now.Format("20060102")
	var seq int64
	err := tx.Raw(
		`INSERT INTO day_counters (scope, day, seq) VALUES (?, ?, 1)
		 ON CONFLICT (scope, day) DO UPDATE SET seq = day_counters.seq + 1
		 RETURNING seq`,
		scope, day,
	).Scan(&seq).Error
	if err != nil {
		return "", err
	}
	switch scope {
	case "po":
		return fmt.Sprintf("PO-%s-%03d", day, seq), nil
	default:
		return fmt.Sprintf("SC-%s-%04d", day, seq), nil
	}
}
