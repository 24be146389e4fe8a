package model

import "time"

// Facility represents a schedulable location in the upstream system.
// Coordinates are pointers because geocoding can legitimately fail to
// resolve an address; a nil pair means "unrankable", not an error.
type Facility struct {
	OrgID     int64    `gorm:"primaryKey" json:"orgId"`
	Name      string   `gorm:"size:256" json:"name"`
	Address   string   `gorm:"size:512" json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	ImageURL  string   `gorm:"size:1024" json:"imageUrl,omitempty"`
	// Position preserves the upstream list order across a save/load round trip.
	Position  int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Subscriptions []*PushSubscription `gorm:"many2many:subscription_facility_mapping;" json:"-"`
}

// Complete reports whether the facility has all the data a refresh cycle
// would otherwise fetch. Incomplete entries are refresh candidates.
func (f Facility) Complete() bool {
	return f.Name != "" && f.Address != "" && f.Latitude != nil && f.Longitude != nil
}
