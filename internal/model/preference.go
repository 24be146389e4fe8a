package model

import "time"

// Preference keys persisted in the key/value table.
const (
	PrefDesiredFacilityID  = "desiredFacilityId"
	PrefDirectoryTimestamp = "facilityDirectoryTimestamp"
)

// Preference is a persisted key/value pair for small bits of state that do
// not warrant their own table (the user's default facility, the directory
// refresh timestamp).
type Preference struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:256;not null"`
	UpdatedAt time.Time
}
