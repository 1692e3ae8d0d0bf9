package database_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"senorito-pos/internal/database"
	"senorito-pos/internal/testutil"
)

func nextInTx(t *testing.T, db *gorm.DB, scope string, now time.Time) string {
	t.Helper()
	var number string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = database.NextDocumentNumber(tx, scope, now)
		return err
	})
	require.NoError(t, err)
	return number
}

func TestDocumentNumbersIncrementWithinDay(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "SC-20260314-0001", nextInTx(t, db, "order", now))
	assert.Equal(t, "SC-20260314-0002", nextInTx(t, db, "order", now))
	assert.Equal(t, "SC-20260314-0003", nextInTx(t, db, "order", now))
}

func TestDocumentNumbersResetPerDay(t *testing.T) {
	db := testutil.OpenDB(t)
	day1 := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)

	assert.Equal(t, "SC-20260314-0001", nextInTx(t, db, "order", day1))
	assert.Equal(t, "SC-20260315-0001", nextInTx(t, db, "order", day2))
}

func TestDocumentNumberScopesAreIndependent(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "SC-20260314-0001", nextInTx(t, db, "order", now))
	assert.Equal(t, "PO-20260314-001", nextInTx(t, db, "po", now))
	assert.Equal(t, "PO-20260314-002", nextInTx(t, db, "po", now))
	assert.Equal(t, "SC-20260314-0002", nextInTx(t, db, "order", now))
}

func TestPONumberFormat(t *testing.T) {
	db := testutil.OpenDB(t)
	now := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)

	got := nextInTx(t, db, "po", now)
	assert.Equal(t, fmt.Sprintf("PO-%s-001", now.Format("20060102")), got)
}
