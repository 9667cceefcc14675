package domain

import "time"

// Nullable columns are pointers: nil means the value is unset and encodes
// as an empty CSV field.

type Hotel struct {
	ID            string
	Name          string
	Country       string
	IngestionDate string
}

type Customer struct {
	ID            int64
	FirstName     string
	LastName      string
	Email         *string
	IngestionDate string
}

type Room struct {
	ID            string
	HotelID       string
	RoomType      string
	IngestionDate string
}

type Booking struct {
	ID            int64
	CustomerID    int64
	RoomID        string
	HotelID       string
	Checkin       *time.Time
	Checkout      *time.Time
	TotalAmount   *float64
	Currency      *string
	Status        string
	Source        string
	IngestionDate string
}

type Payment struct {
	ID            int64
	BookingID     int64
	Amount        float64
	Currency      *string
	IngestionDate string

	// Data-quality flags set by the cleansing stage. OverAmount stays nil
	// for orphan payments and for payments whose booking has no total to
	// compare against.
	Orphan     bool
	OverAmount *bool
}

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ValidCurrencies is the whitelist applied to bookings and payments;
// anything else is blanked out during cleansing.
var ValidCurrencies = map[string]bool{"EUR": true, "USD": true, "GBP": true}

// UnknownCountry is the sentinel code for hotels with no usable country;
// such rows are dropped during cleansing.
const UnknownCountry = "XX"
