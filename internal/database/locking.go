package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate is a GORM scope that adds SELECT ... FOR UPDATE. The sqlite
// driver drops the clause, which is fine for its single-writer model.
func ForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// SetLockTimeout bounds how long statements in the current transaction wait
// for row locks. A blocked statement then fails with SQLSTATE 55P03, which
// ClassifyError maps to a retryable error. Only postgres supports this;
// other dialects are left untouched.
func SetLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if timeout <= 0 || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error
}
