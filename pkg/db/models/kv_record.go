package models

import "time"

// KVRecord is one durable key/value entry (identity, cart, account records).
type KVRecord struct {
	Key       string    `gorm:"column:record_key;primaryKey"`
	Value     string    `gorm:"column:record_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by the migrations.
func (KVRecord) TableName() string {
	return "kv_records"
}
