package models

import "time"

// Booking is a scheduled lab test. Price is always derived from TestType.
type Booking struct {
	ID               string    `json:"id"`
	FullName         string    `json:"fullName"`
	ContactNumber    string    `json:"contactNumber"`
	Email            string    `json:"email"`
	TestType         string    `json:"testType"`
	Price            int64     `json:"price"`
	PreferredDate    string    `json:"preferredDate"` // YYYY-MM-DD
	PreferredTime    string    `json:"preferredTime"` // HH:MM
	CollectionMethod string    `json:"collectionMethod"`
	Address          string    `json:"address"`
	Notes            string    `json:"notes"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ScheduledAt combines PreferredDate and PreferredTime in loc.
func (b *Booking) ScheduledAt(loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	layout := "2006-01-02 15:04"
	value := b.PreferredDate + " " + b.PreferredTime
	if b.PreferredTime == "" {
		layout = "2006-01-02"
		value = b.PreferredDate
	}
	t, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsHomeCollection reports whether a sample is collected at the patient's address.
func (b *Booking) IsHomeCollection() bool {
	return b.CollectionMethod == CollectionHome
}
