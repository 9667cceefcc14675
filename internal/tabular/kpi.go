package tabular

import (
	"strconv"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

// Gold-tier encoders. Decoders exist only where a consumer inside this
// repo reads a KPI table back (tests do, via the generic Decode).

func fmtF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func EncodeDailyRevenue(rows []domain.DailyRevenueRow) ([]byte, error) {
	t := &Table{Header: []string{"date", "gross_revenue", "bookings_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Date.Format(DateLayout), fmtF(r.GrossRevenue), strconv.Itoa(r.BookingsCount),
		})
	}
	return t.Encode()
}

func EncodeCancellationRate(rows []domain.CancellationRateRow) ([]byte, error) {
	t := &Table{Header: []string{"source", "total_bookings", "cancelled", "cancellation_rate_pct"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Source, strconv.Itoa(r.TotalBookings), strconv.Itoa(r.Cancelled), fmtF(r.CancellationRatePct),
		})
	}
	return t.Encode()
}

func EncodeCollectionRate(rows []domain.CollectionRateRow) ([]byte, error) {
	t := &Table{Header: []string{"hotel_id", "total_bookings_value", "total_payments_value", "collection_rate"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.HotelID, fmtF(r.TotalBookingsValue), fmtF(r.TotalPaymentsValue), fmtF(r.CollectionRate),
		})
	}
	return t.Encode()
}

func EncodeOverbookingAlerts(rows []domain.OverbookingAlertRow) ([]byte, error) {
	t := &Table{Header: []string{"room_id", "booking_id_1", "booking_id_2", "overlap_start", "overlap_end"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.RoomID,
			strconv.FormatInt(r.BookingID1, 10),
			strconv.FormatInt(r.BookingID2, 10),
			r.OverlapStart.Format(DateLayout),
			r.OverlapEnd.Format(DateLayout),
		})
	}
	return t.Encode()
}

func EncodeCustomerValue(rows []domain.CustomerValueRow) ([]byte, error) {
	t := &Table{Header: []string{
		"customer_id", "first_name", "last_name", "email",
		"bookings_count", "revenue_sum", "avg_ticket",
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(r.CustomerID, 10),
			r.FirstName, r.LastName, deref(r.Email),
			strconv.Itoa(r.BookingsCount), fmtF(r.RevenueSum), fmtF(r.AvgTicket),
		})
	}
	return t.Encode()
}
