package model

import "time"

// ClientRecord is a single persisted piece of client state (session, applied jobs) keyed by
// profile scoped key.
type ClientRecord struct {
	Key       string    `gorm:"primaryKey;type:text" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"type:timestamp" json:"updated_at"`
}

// MigrateAble is array of model instance, use for migrating database
var MigrateAble []interface{}

func init() {
	MigrateAble = append(
		MigrateAble,
		&ClientRecord{},
	)
}
