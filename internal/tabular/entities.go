package tabular

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

// Typed codecs for the five entity tables. Decoding maps columns by
// header name so column order on the wire does not matter; encoding
// always emits the canonical column order below.
//
// Key columns must parse; value columns (amounts, dates) that fail to
// parse decode as unset so the row survives and the anomaly is logged
// rather than the table rejected.

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

func requireColumns(table string, idx map[string]int, cols ...string) error {
	for _, c := range cols {
		if _, ok := idx[c]; !ok {
			return fmt.Errorf("table %s: missing column %q", table, c)
		}
	}
	return nil
}

func cell(idx map[string]int, row []string, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseID(table, col, s string, rowNum int) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("table %s row %d: bad %s %q", table, rowNum, col, s)
	}
	return n, nil
}

// looseFloat returns nil for empty or unparseable values.
func looseFloat(table, col, s string, rowNum int) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Warn().Str("table", table).Int("row", rowNum).Str("column", col).
			Str("value", s).Msg("unparseable number, keeping row with unset value")
		return nil
	}
	return &f
}

// looseDate returns nil for empty or unparseable values.
func looseDate(table, col, s string, rowNum int) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{DateLayout, TimestampLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	log.Warn().Str("table", table).Int("row", rowNum).Str("column", col).
		Str("value", s).Msg("unparseable date, keeping row with unset value")
	return nil
}

func looseBool(s string) *bool {
	switch strings.TrimSpace(s) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func fmtFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func fmtBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// ---- hotels ----

func DecodeHotels(data []byte) ([]domain.Hotel, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("table hotels: %w", err)
	}
	idx := t.columnIndex()
	if err := requireColumns("hotels", idx, "hotel_id", "name", "country"); err != nil {
		return nil, err
	}
	out := make([]domain.Hotel, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, domain.Hotel{
			ID:            cell(idx, row, "hotel_id"),
			Name:          cell(idx, row, "name"),
			Country:       cell(idx, row, "country"),
			IngestionDate: cell(idx, row, "ingestion_date"),
		})
	}
	return out, nil
}

func EncodeHotels(hs []domain.Hotel) ([]byte, error) {
	t := &Table{Header: []string{"hotel_id", "name", "country", "ingestion_date"}}
	for _, h := range hs {
		t.Rows = append(t.Rows, []string{h.ID, h.Name, h.Country, h.IngestionDate})
	}
	return t.Encode()
}

// ---- customers ----

func DecodeCustomers(data []byte) ([]domain.Customer, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("table customers: %w", err)
	}
	idx := t.columnIndex()
	if err := requireColumns("customers", idx, "customer_id", "first_name", "last_name", "email"); err != nil {
		return nil, err
	}
	out := make([]domain.Customer, 0, len(t.Rows))
	for i, row := range t.Rows {
		id, err := parseID("customers", "customer_id", cell(idx, row, "customer_id"), i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Customer{
			ID:            id,
			FirstName:     cell(idx, row, "first_name"),
			LastName:      cell(idx, row, "last_name"),
			Email:         strPtr(cell(idx, row, "email")),
			IngestionDate: cell(idx, row, "ingestion_date"),
		})
	}
	return out, nil
}

func EncodeCustomers(cs []domain.Customer) ([]byte, error) {
	t := &Table{Header: []string{"customer_id", "first_name", "last_name", "email", "ingestion_date"}}
	for _, c := range cs {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(c.ID, 10), c.FirstName, c.LastName, deref(c.Email), c.IngestionDate,
		})
	}
	return t.Encode()
}

// ---- rooms ----

func DecodeRooms(data []byte) ([]domain.Room, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("table rooms: %w", err)
	}
	idx := t.columnIndex()
	if err := requireColumns("rooms", idx, "room_id", "hotel_id"); err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, domain.Room{
			ID:            cell(idx, row, "room_id"),
			HotelID:       cell(idx, row, "hotel_id"),
			RoomType:      cell(idx, row, "room_type"),
			IngestionDate: cell(idx, row, "ingestion_date"),
		})
	}
	return out, nil
}

func EncodeRooms(rs []domain.Room) ([]byte, error) {
	t := &Table{Header: []string{"room_id", "hotel_id", "room_type", "ingestion_date"}}
	for _, r := range rs {
		t.Rows = append(t.Rows, []string{r.ID, r.HotelID, r.RoomType, r.IngestionDate})
	}
	return t.Encode()
}

// ---- bookings ----

func DecodeBookings(data []byte) ([]domain.Booking, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("table bookings: %w", err)
	}
	idx := t.columnIndex()
	err = requireColumns("bookings", idx,
		"booking_id", "customer_id", "room_id", "hotel_id",
		"checkin_date", "checkout_date", "total_amount", "currency", "status", "source")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(t.Rows))
	for i, row := range t.Rows {
		id, err := parseID("bookings", "booking_id", cell(idx, row, "booking_id"), i+1)
		if err != nil {
			return nil, err
		}
		custID, err := parseID("bookings", "customer_id", cell(idx, row, "customer_id"), i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Booking{
			ID:            id,
			CustomerID:    custID,
			RoomID:        cell(idx, row, "room_id"),
			HotelID:       cell(idx, row, "hotel_id"),
			Checkin:       looseDate("bookings", "checkin_date", cell(idx, row, "checkin_date"), i+1),
			Checkout:      looseDate("bookings", "checkout_date", cell(idx, row, "checkout_date"), i+1),
			TotalAmount:   looseFloat("bookings", "total_amount", cell(idx, row, "total_amount"), i+1),
			Currency:      strPtr(cell(idx, row, "currency")),
			Status:        cell(idx, row, "status"),
			Source:        cell(idx, row, "source"),
			IngestionDate: cell(idx, row, "ingestion_date"),
		})
	}
	return out, nil
}

func EncodeBookings(bs []domain.Booking) ([]byte, error) {
	t := &Table{Header: []string{
		"booking_id", "customer_id", "room_id", "hotel_id",
		"checkin_date", "checkout_date", "total_amount", "currency", "status", "source",
		"ingestion_date",
	}}
	for _, b := range bs {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(b.ID, 10),
			strconv.FormatInt(b.CustomerID, 10),
			b.RoomID,
			b.HotelID,
			fmtDate(b.Checkin),
			fmtDate(b.Checkout),
			fmtFloat(b.TotalAmount),
			deref(b.Currency),
			b.Status,
			b.Source,
			b.IngestionDate,
		})
	}
	return t.Encode()
}

// ---- payments ----

// DecodePayments accepts both the bronze shape and the silver shape (with
// the dq_* columns); the cleansing stage is a fixed point over its own
// output.
func DecodePayments(data []byte) ([]domain.Payment, error) {
	t, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("table payments: %w", err)
	}
	idx := t.columnIndex()
	if err := requireColumns("payments", idx, "payment_id", "booking_id", "amount", "currency"); err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(t.Rows))
	for i, row := range t.Rows {
		id, err := parseID("payments", "payment_id", cell(idx, row, "payment_id"), i+1)
		if err != nil {
			return nil, err
		}
		bookingID, err := parseID("payments", "booking_id", cell(idx, row, "booking_id"), i+1)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(cell(idx, row, "amount")), 64)
		if err != nil {
			return nil, fmt.Errorf("table payments row %d: bad amount %q", i+1, cell(idx, row, "amount"))
		}
		p := domain.Payment{
			ID:            id,
			BookingID:     bookingID,
			Amount:        amount,
			Currency:      strPtr(cell(idx, row, "currency")),
			IngestionDate: cell(idx, row, "ingestion_date"),
		}
		if v := looseBool(cell(idx, row, "dq_orphan")); v != nil {
			p.Orphan = *v
		}
		p.OverAmount = looseBool(cell(idx, row, "dq_over_amount"))
		out = append(out, p)
	}
	return out, nil
}

func EncodePayments(ps []domain.Payment) ([]byte, error) {
	t := &Table{Header: []string{
		"payment_id", "booking_id", "amount", "currency", "ingestion_date",
		"dq_orphan", "dq_over_amount",
	}}
	for _, p := range ps {
		t.Rows = append(t.Rows, []string{
			strconv.FormatInt(p.ID, 10),
			strconv.FormatInt(p.BookingID, 10),
			strconv.FormatFloat(p.Amount, 'f', -1, 64),
			deref(p.Currency),
			p.IngestionDate,
			strconv.FormatBool(p.Orphan),
			fmtBool(p.OverAmount),
		})
	}
	return t.Encode()
}
