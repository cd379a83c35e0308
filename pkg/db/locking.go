package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds a FOR UPDATE row lock to the query. SQLite has no row locks
// and serializes writers itself, so the clause is only added for Postgres.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if !supportsRowLocks(tx) {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// ForUpdateSkipLocked is ForUpdate with SKIP LOCKED, for queue-style readers.
func ForUpdateSkipLocked(tx *gorm.DB) *gorm.DB {
	if !supportsRowLocks(tx) {
		return tx
	}
	return tx.Clauses(clause.Locking{
		Strength: clause.LockingStrengthUpdate,
		Options:  clause.LockingOptionsSkipLocked,
	})
}

func supportsRowLocks(tx *gorm.DB) bool {
	return tx != nil && tx.Dialector != nil && tx.Dialector.Name() == "postgres"
}
