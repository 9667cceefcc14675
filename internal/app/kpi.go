package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/observability"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/tabular"
)

// KPIService computes the five gold-tier tables from the silver tier.
// The computations share only read access to finalized inputs, so they
// run in parallel.
type KPIService struct {
	store domain.LakeStore
	lake  string
}

func NewKPIService(store domain.LakeStore, lake string) *KPIService {
	return &KPIService{store: store, lake: lake}
}

func (s *KPIService) Run(ctx context.Context) error {
	bookings, payments, customers, err := s.readInputs(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows := DailyRevenue(bookings)
		data, err := tabular.EncodeDailyRevenue(rows)
		if err != nil {
			return err
		}
		return s.writeKPI(ctx, "daily_revenue", data, len(rows))
	})
	g.Go(func() error {
		rows := CancellationRateBySource(bookings)
		data, err := tabular.EncodeCancellationRate(rows)
		if err != nil {
			return err
		}
		return s.writeKPI(ctx, "cancellation_rate_by_source", data, len(rows))
	})
	g.Go(func() error {
		rows := CollectionRateByHotel(bookings, payments)
		data, err := tabular.EncodeCollectionRate(rows)
		if err != nil {
			return err
		}
		return s.writeKPI(ctx, "collection_rate_by_hotel", data, len(rows))
	})
	g.Go(func() error {
		rows := OverbookingAlerts(bookings)
		data, err := tabular.EncodeOverbookingAlerts(rows)
		if err != nil {
			return err
		}
		return s.writeKPI(ctx, "overbooking_alerts", data, len(rows))
	})
	g.Go(func() error {
		rows := CustomerValue(bookings, customers)
		data, err := tabular.EncodeCustomerValue(rows)
		if err != nil {
			return err
		}
		return s.writeKPI(ctx, "customer_value", data, len(rows))
	})
	return g.Wait()
}

func (s *KPIService) readInputs(ctx context.Context) ([]domain.Booking, []domain.Payment, []domain.Customer, error) {
	read := func(table string) ([]byte, error) {
		raw, err := s.store.Download(ctx, s.lake, domain.TablePath(domain.TierSilver, table))
		if err != nil {
			return nil, fmt.Errorf("read silver %s: %w", table, err)
		}
		return raw, nil
	}

	rawB, err := read("bookings")
	if err != nil {
		return nil, nil, nil, err
	}
	bookings, err := tabular.DecodeBookings(rawB)
	if err != nil {
		return nil, nil, nil, err
	}
	rawP, err := read("payments")
	if err != nil {
		return nil, nil, nil, err
	}
	payments, err := tabular.DecodePayments(rawP)
	if err != nil {
		return nil, nil, nil, err
	}
	rawC, err := read("customers")
	if err != nil {
		return nil, nil, nil, err
	}
	customers, err := tabular.DecodeCustomers(rawC)
	if err != nil {
		return nil, nil, nil, err
	}
	// No KPI consumes rooms, but the stage still requires the table to be
	// present and well formed, matching the silver tier contract.
	rawR, err := read("rooms")
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := tabular.DecodeRooms(rawR); err != nil {
		return nil, nil, nil, err
	}
	return bookings, payments, customers, nil
}

// writeKPI persists a non-empty result. Empty results are intentionally
// not written: absence of the gold table is the documented signal for "no
// data", not a failure.
func (s *KPIService) writeKPI(ctx context.Context, name string, data []byte, rows int) error {
	if rows == 0 {
		log.Info().Str("kpi", name).Msg("empty result, skipping write")
		return nil
	}
	if err := s.store.Upload(ctx, s.lake, domain.TablePath(domain.TierGold, name), data); err != nil {
		return fmt.Errorf("write gold %s: %w", name, err)
	}
	observability.AddKPIRows(name, rows)
	log.Info().Str("kpi", name).Int("rows", rows).Msg("gold table written")
	return nil
}

// ---- pure computations ----

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// DailyRevenue sums confirmed bookings per check-in calendar date.
// Bookings with an unset check-in have no group key and are skipped;
// unset amounts contribute nothing to the sum but still count.
func DailyRevenue(bs []domain.Booking) []domain.DailyRevenueRow {
	type agg struct {
		revenue float64
		count   int
	}
	byDate := make(map[time.Time]*agg)
	for _, b := range bs {
		if b.Status != domain.StatusConfirmed || b.Checkin == nil {
			continue
		}
		d := truncateToDate(*b.Checkin)
		a := byDate[d]
		if a == nil {
			a = &agg{}
			byDate[d] = a
		}
		a.count++
		if b.TotalAmount != nil {
			a.revenue += *b.TotalAmount
		}
	}
	out := make([]domain.DailyRevenueRow, 0, len(byDate))
	for d, a := range byDate {
		out = append(out, domain.DailyRevenueRow{Date: d, GrossRevenue: a.revenue, BookingsCount: a.count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// CancellationRateBySource reports, per booking source, how many bookings
// were cancelled, as a percentage rounded to two decimals.
func CancellationRateBySource(bs []domain.Booking) []domain.CancellationRateRow {
	type agg struct {
		total     int
		cancelled int
	}
	bySource := make(map[string]*agg)
	for _, b := range bs {
		a := bySource[b.Source]
		if a == nil {
			a = &agg{}
			bySource[b.Source] = a
		}
		a.total++
		if b.Status == domain.StatusCancelled {
			a.cancelled++
		}
	}
	out := make([]domain.CancellationRateRow, 0, len(bySource))
	for src, a := range bySource {
		row := domain.CancellationRateRow{Source: src, TotalBookings: a.total, Cancelled: a.cancelled}
		if a.total > 0 {
			row.CancellationRatePct = round2(100 * float64(a.cancelled) / float64(a.total))
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// CollectionRateByHotel compares the booked value per hotel with the paid
// value. Payments attach to a hotel through their booking (inner join);
// hotels with bookings but no payments report a zero payments value. The
// rate may exceed 1.0 when guests overpaid.
func CollectionRateByHotel(bs []domain.Booking, ps []domain.Payment) []domain.CollectionRateRow {
	booked := make(map[string]float64)
	hotelOf := make(map[int64]string, len(bs))
	for _, b := range bs {
		if _, ok := booked[b.HotelID]; !ok {
			booked[b.HotelID] = 0
		}
		if b.TotalAmount != nil {
			booked[b.HotelID] += *b.TotalAmount
		}
		if _, ok := hotelOf[b.ID]; !ok {
			hotelOf[b.ID] = b.HotelID
		}
	}
	paid := make(map[string]float64)
	for _, p := range ps {
		if hotel, ok := hotelOf[p.BookingID]; ok {
			paid[hotel] += p.Amount
		}
	}
	out := make([]domain.CollectionRateRow, 0, len(booked))
	for hotel, value := range booked {
		row := domain.CollectionRateRow{
			HotelID:            hotel,
			TotalBookingsValue: value,
			TotalPaymentsValue: paid[hotel],
		}
		if value > 0 {
			row.CollectionRate = row.TotalPaymentsValue / value
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HotelID < out[j].HotelID })
	return out
}

// OverbookingAlerts emits one row per pair of distinct bookings for the
// same room whose stay intervals intersect. Bookings are grouped by room
// first so the pairwise comparison never crosses rooms; the result set is
// identical to a full self-join filtered on room_id, just cheaper.
// Pairs are oriented booking_id_1 < booking_id_2 so each overlap appears
// exactly once; bookings with an unset date cannot overlap anything.
func OverbookingAlerts(bs []domain.Booking) []domain.OverbookingAlertRow {
	byRoom := make(map[string][]domain.Booking)
	for _, b := range bs {
		if b.Checkin == nil || b.Checkout == nil {
			continue
		}
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}
	var out []domain.OverbookingAlertRow
	for room, group := range byRoom {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				b1, b2 := group[i], group[j]
				if b1.ID == b2.ID {
					continue
				}
				if b1.Checkin.Before(*b2.Checkout) && b1.Checkout.After(*b2.Checkin) {
					out = append(out, domain.OverbookingAlertRow{
						RoomID:       room,
						BookingID1:   b1.ID,
						BookingID2:   b2.ID,
						OverlapStart: maxTime(*b1.Checkin, *b2.Checkin),
						OverlapEnd:   minTime(*b1.Checkout, *b2.Checkout),
					})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoomID != out[j].RoomID {
			return out[i].RoomID < out[j].RoomID
		}
		if out[i].BookingID1 != out[j].BookingID1 {
			return out[i].BookingID1 < out[j].BookingID1
		}
		return out[i].BookingID2 < out[j].BookingID2
	})
	return out
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// CustomerValue aggregates booking volume and revenue per customer.
// Bookings whose customer_id has no match in the customers table drop out
// (inner join); output is ordered by revenue descending, customer_id
// ascending on ties.
func CustomerValue(bs []domain.Booking, cs []domain.Customer) []domain.CustomerValueRow {
	customers := make(map[int64]domain.Customer, len(cs))
	for _, c := range cs {
		if _, ok := customers[c.ID]; !ok {
			customers[c.ID] = c
		}
	}
	type agg struct {
		count   int
		revenue float64
	}
	byCustomer := make(map[int64]*agg)
	for _, b := range bs {
		if _, ok := customers[b.CustomerID]; !ok {
			continue
		}
		a := byCustomer[b.CustomerID]
		if a == nil {
			a = &agg{}
			byCustomer[b.CustomerID] = a
		}
		a.count++
		if b.TotalAmount != nil {
			a.revenue += *b.TotalAmount
		}
	}
	out := make([]domain.CustomerValueRow, 0, len(byCustomer))
	for id, a := range byCustomer {
		c := customers[id]
		row := domain.CustomerValueRow{
			CustomerID:    id,
			FirstName:     c.FirstName,
			LastName:      c.LastName,
			Email:         c.Email,
			BookingsCount: a.count,
			RevenueSum:    a.revenue,
		}
		if a.count > 0 {
			row.AvgTicket = a.revenue / float64(a.count)
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RevenueSum != out[j].RevenueSum {
			return out[i].RevenueSum > out[j].RevenueSum
		}
		return out[i].CustomerID < out[j].CustomerID
	})
	return out
}
