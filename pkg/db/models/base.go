package models

import "github.com/google/uuid"

// Scales of the numeric(12,2) money and numeric(10,3) weight columns.
// Values are rounded to these before validation so checks see what is stored.
const (
	MoneyScale  int32 = 2
	WeightScale int32 = 3
)

// ensureID assigns a random UUID when the primary key is still zero.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
