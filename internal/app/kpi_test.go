package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/app"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/tabular"
)

func TestDailyRevenue(t *testing.T) {
	bs := []domain.Booking{
		{ID: 1, Status: "confirmed", Checkin: dp(2024, 3, 2), TotalAmount: fp(100)},
		{ID: 2, Status: "confirmed", Checkin: dp(2024, 3, 1), TotalAmount: fp(300)},
		{ID: 3, Status: "confirmed", Checkin: dp(2024, 3, 1), TotalAmount: nil}, // counts, adds nothing
		{ID: 4, Status: "cancelled", Checkin: dp(2024, 3, 1), TotalAmount: fp(999)},
		{ID: 5, Status: "confirmed", Checkin: nil, TotalAmount: fp(50)}, // no date, no group
	}
	rows := app.DailyRevenue(bs)
	require.Len(t, rows, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 300.0, rows[0].GrossRevenue)
	assert.Equal(t, 2, rows[0].BookingsCount)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), rows[1].Date)
	assert.Equal(t, 100.0, rows[1].GrossRevenue)
}

func TestCancellationRateBySource(t *testing.T) {
	bs := []domain.Booking{
		{ID: 1, Source: "web", Status: "cancelled"},
		{ID: 2, Source: "web", Status: "confirmed"},
		{ID: 3, Source: "web", Status: "confirmed"},
		{ID: 4, Source: "agency", Status: "confirmed"},
	}
	rows := app.CancellationRateBySource(bs)
	require.Len(t, rows, 2)

	assert.Equal(t, "agency", rows[0].Source)
	assert.Equal(t, 0.0, rows[0].CancellationRatePct)

	assert.Equal(t, "web", rows[1].Source)
	assert.Equal(t, 3, rows[1].TotalBookings)
	assert.Equal(t, 1, rows[1].Cancelled)
	assert.Equal(t, 33.33, rows[1].CancellationRatePct) // rounded to 2 decimals

	for _, r := range rows {
		assert.GreaterOrEqual(t, r.CancellationRatePct, 0.0)
		assert.LessOrEqual(t, r.CancellationRatePct, 100.0)
	}
}

func TestCollectionRateByHotel(t *testing.T) {
	bs := []domain.Booking{
		{ID: 1, HotelID: "H1", TotalAmount: fp(200)},
		{ID: 2, HotelID: "H1", TotalAmount: fp(200)},
		{ID: 3, HotelID: "H2", TotalAmount: fp(100)},
		{ID: 4, HotelID: "H3", TotalAmount: nil}, // zero denominator
	}
	ps := []domain.Payment{
		{ID: 10, BookingID: 1, Amount: 200},
		{ID: 11, BookingID: 2, Amount: 300}, // overpayment
		{ID: 12, BookingID: 99, Amount: 50}, // orphan, no hotel attached
	}
	rows := app.CollectionRateByHotel(bs, ps)
	require.Len(t, rows, 3)

	assert.Equal(t, "H1", rows[0].HotelID)
	assert.Equal(t, 400.0, rows[0].TotalBookingsValue)
	assert.Equal(t, 500.0, rows[0].TotalPaymentsValue)
	assert.Equal(t, 1.25, rows[0].CollectionRate) // may exceed 1.0

	assert.Equal(t, "H2", rows[1].HotelID)
	assert.Equal(t, 0.0, rows[1].TotalPaymentsValue) // left join, no payments
	assert.Equal(t, 0.0, rows[1].CollectionRate)

	assert.Equal(t, "H3", rows[2].HotelID)
	assert.Equal(t, 0.0, rows[2].CollectionRate) // zero denominator
}

func TestOverbookingAlertsEmitsEachPairOnce(t *testing.T) {
	bs := []domain.Booking{
		{ID: 1, RoomID: "R1", Checkin: dp(2024, 1, 1), Checkout: dp(2024, 1, 5)},
		{ID: 2, RoomID: "R1", Checkin: dp(2024, 1, 3), Checkout: dp(2024, 1, 7)},
	}
	rows := app.OverbookingAlerts(bs)
	require.Len(t, rows, 1)
	assert.Equal(t, "R1", rows[0].RoomID)
	assert.Equal(t, int64(1), rows[0].BookingID1)
	assert.Equal(t, int64(2), rows[0].BookingID2)
	assert.Equal(t, *dp(2024, 1, 3), rows[0].OverlapStart)
	assert.Equal(t, *dp(2024, 1, 5), rows[0].OverlapEnd)
}

func TestOverbookingAlertsBoundaries(t *testing.T) {
	// back-to-back stays do not overlap: checkout == next checkin
	bs := []domain.Booking{
		{ID: 1, RoomID: "R1", Checkin: dp(2024, 1, 1), Checkout: dp(2024, 1, 3)},
		{ID: 2, RoomID: "R1", Checkin: dp(2024, 1, 3), Checkout: dp(2024, 1, 5)},
		// same dates, different room: never compared
		{ID: 3, RoomID: "R2", Checkin: dp(2024, 1, 1), Checkout: dp(2024, 1, 5)},
		// unset dates cannot overlap anything
		{ID: 4, RoomID: "R1", Checkin: nil, Checkout: nil},
	}
	assert.Empty(t, app.OverbookingAlerts(bs))
}

func TestOverbookingAlertsMultiplePairs(t *testing.T) {
	bs := []domain.Booking{
		{ID: 3, RoomID: "R1", Checkin: dp(2024, 1, 4), Checkout: dp(2024, 1, 8)},
		{ID: 1, RoomID: "R1", Checkin: dp(2024, 1, 1), Checkout: dp(2024, 1, 10)},
		{ID: 2, RoomID: "R1", Checkin: dp(2024, 1, 2), Checkout: dp(2024, 1, 5)},
	}
	rows := app.OverbookingAlerts(bs)
	require.Len(t, rows, 3)
	// ordered by (room, id1, id2) with id1 < id2 in every pair
	assert.Equal(t, [2]int64{1, 2}, [2]int64{rows[0].BookingID1, rows[0].BookingID2})
	assert.Equal(t, [2]int64{1, 3}, [2]int64{rows[1].BookingID1, rows[1].BookingID2})
	assert.Equal(t, [2]int64{2, 3}, [2]int64{rows[2].BookingID1, rows[2].BookingID2})
}

func TestCustomerValue(t *testing.T) {
	cs := []domain.Customer{
		{ID: 10, FirstName: "Ada", LastName: "Lovelace", Email: strp("ada@example.com")},
		{ID: 11, FirstName: "Bob", LastName: "Gray"},
	}
	bs := []domain.Booking{
		{ID: 1, CustomerID: 10, TotalAmount: fp(100)},
		{ID: 2, CustomerID: 10, TotalAmount: fp(50)},
		{ID: 3, CustomerID: 11, TotalAmount: fp(500)},
		{ID: 4, CustomerID: 99, TotalAmount: fp(999)}, // no customer row, inner join drops it
	}
	rows := app.CustomerValue(bs, cs)
	require.Len(t, rows, 2)

	// descending by revenue
	assert.Equal(t, int64(11), rows[0].CustomerID)
	assert.Equal(t, 500.0, rows[0].RevenueSum)
	assert.Equal(t, 500.0, rows[0].AvgTicket)

	assert.Equal(t, int64(10), rows[1].CustomerID)
	assert.Equal(t, 2, rows[1].BookingsCount)
	assert.Equal(t, 150.0, rows[1].RevenueSum)
	assert.Equal(t, 75.0, rows[1].AvgTicket)
}

// Empty results are skipped, not written: the gold table's absence is the
// signal for "no data".
func TestKPIServiceSkipsEmptyResults(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	silver := map[string]string{
		"hotels":    "hotel_id,name,country,ingestion_date\n",
		"customers": "customer_id,first_name,last_name,email,ingestion_date\n",
		"rooms":     "room_id,hotel_id,room_type,ingestion_date\n",
		// one cancelled booking: cancellation and collection KPIs have rows,
		// daily revenue / overbooking / customer value stay empty
		"bookings": "booking_id,customer_id,room_id,hotel_id,checkin_date,checkout_date,total_amount,currency,status,source,ingestion_date\n" +
			"1,10,R1,H1,2024-03-01,2024-03-04,300,EUR,cancelled,web,2024-03-10 08:00:00\n",
		"payments": "payment_id,booking_id,amount,currency,ingestion_date,dq_orphan,dq_over_amount\n",
	}
	for table, body := range silver {
		require.NoError(t, store.Upload(ctx, "datalake", domain.TablePath(domain.TierSilver, table), []byte(body)))
	}

	svc := app.NewKPIService(store, "datalake")
	require.NoError(t, svc.Run(ctx))

	assert.True(t, store.has("datalake", domain.TablePath(domain.TierGold, "cancellation_rate_by_source")))
	assert.True(t, store.has("datalake", domain.TablePath(domain.TierGold, "collection_rate_by_hotel")))
	assert.False(t, store.has("datalake", domain.TablePath(domain.TierGold, "daily_revenue")))
	assert.False(t, store.has("datalake", domain.TablePath(domain.TierGold, "overbooking_alerts")))
	assert.False(t, store.has("datalake", domain.TablePath(domain.TierGold, "customer_value")))
}

func TestKPIServiceFailsOnMissingInput(t *testing.T) {
	store := newMemStore()
	svc := app.NewKPIService(store, "datalake")
	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// guard against header drift in the gold wire format
func TestGoldHeaders(t *testing.T) {
	data, err := tabular.EncodeDailyRevenue([]domain.DailyRevenueRow{})
	require.NoError(t, err)
	assert.Equal(t, "date,gross_revenue,bookings_count\n", string(data))
}
