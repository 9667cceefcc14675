package domain

import "time"

// Derived (gold-tier) row types. Each slice maps to one output table;
// empty slices are not written at all.

type DailyRevenueRow struct {
	Date          time.Time
	GrossRevenue  float64
	BookingsCount int
}

type CancellationRateRow struct {
	Source              string
	TotalBookings       int
	Cancelled           int
	CancellationRatePct float64
}

type CollectionRateRow struct {
	HotelID            string
	TotalBookingsValue float64
	TotalPaymentsValue float64
	CollectionRate     float64
}

type OverbookingAlertRow struct {
	RoomID       string
	BookingID1   int64
	BookingID2   int64
	OverlapStart time.Time
	OverlapEnd   time.Time
}

type CustomerValueRow struct {
	CustomerID    int64
	FirstName     string
	LastName      string
	Email         *string
	BookingsCount int
	RevenueSum    float64
	AvgTicket     float64
}
