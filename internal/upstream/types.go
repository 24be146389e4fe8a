package upstream

// Category identifies one of the four fixed appointment session types.
type Category string

const (
	CategoryBaptism    Category = "BAPTISM"
	CategoryInitiatory Category = "INITIATORY"
	CategoryEndowment  Category = "ENDOWMENT"
	CategorySealing    Category = "SEALING"
)

// Categories returns all categories in declaration order. Availability
// results are always concatenated in this order.
func Categories() []Category {
	return []Category{CategoryBaptism, CategoryInitiatory, CategoryEndowment, CategorySealing}
}

// wireValue is the appointmentType string the upstream API expects.
func (c Category) wireValue() string {
	return "PROXY_" + string(c)
}

// FacilityInfo is the descriptive record the upstream returns for the
// session's current facility. JSON tags are the upstream's field names.
type FacilityInfo struct {
	OrgID   int64  `json:"templeOrgId"`
	Name    string `json:"templeName"`
	Address string `json:"primaryAddress"`
}

// schedulingStatus is one entry of the facility-config list endpoint.
type schedulingStatus struct {
	OrgID                     int64 `json:"templeOrgId"`
	OnlineSchedulingAvailable bool  `json:"onlineSchedulingAvailable"`
}

// imageResponse is the body of the facility image endpoint.
type imageResponse struct {
	URL string `json:"url"`
}

// sessionInfoRequest is the availability query payload. sessionMonth is
// zero-based: that is the upstream API's contract, not a defect.
type sessionInfoRequest struct {
	SessionYear         int    `json:"sessionYear"`
	SessionMonth        int    `json:"sessionMonth"`
	SessionDay          int    `json:"sessionDay"`
	AppointmentType     string `json:"appointmentType"`
	FacilityOrgID       int64  `json:"templeOrgId"`
	IsGuestConfirmation bool   `json:"isGuestConfirmation"`
}

// sessionInfoResponse models the availability endpoint's body.
type sessionInfoResponse struct {
	SessionList []sessionEntry `json:"sessionList"`
}

type sessionEntry struct {
	SessionTime     string         `json:"sessionTime"`
	AppointmentType string         `json:"appointmentType"`
	Details         sessionDetails `json:"details"`
}

// sessionDetails keeps the seat fields untyped because the upstream is not
// consistent about them; anything non-numeric counts as zero seats.
type sessionDetails struct {
	RoomFull             bool `json:"roomFull"`
	SeatsAvailable       any  `json:"seatsAvailable"`
	MaleSeatsAvailable   any  `json:"maleSeatsAvailable"`
	FemaleSeatsAvailable any  `json:"femaleSeatsAvailable"`
}

// seatCount coerces an untyped seat field to an int, treating missing or
// non-numeric values as zero.
func seatCount(v any) int {
	if n, ok := v.(float64); ok {
		return int(n)
	}
	return 0
}

// AvailabilitySlot is one open appointment session, normalized across
// categories. Seat counts by gender are only present for INITIATORY; the
// single seat count is present for every other category.
type AvailabilitySlot struct {
	Category    Category `json:"appointmentCategory"`
	Time        string   `json:"time"`
	Seats       *int     `json:"seatsAvailable,omitempty"`
	MaleSeats   *int     `json:"maleSeats,omitempty"`
	FemaleSeats *int     `json:"femaleSeats,omitempty"`
}
