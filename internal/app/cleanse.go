package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/adapters/observability"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/tabular"
)

// CleansingService reads the five bronze tables, applies the per-entity
// correction rules and writes the silver tables. Hotels, customers, rooms
// and bookings are independent and run concurrently; payments waits for
// the cleaned bookings because its reconciliation joins against them.
//
// A missing or unparseable input fails the whole stage: there is no
// partial-success state within a table.
type CleansingService struct {
	store domain.LakeStore
	lake  string
}

func NewCleansingService(store domain.LakeStore, lake string) *CleansingService {
	return &CleansingService{store: store, lake: lake}
}

func (s *CleansingService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.cleanseHotels(ctx) })
	g.Go(func() error { return s.cleanseCustomers(ctx) })
	g.Go(func() error { return s.cleanseRooms(ctx) })
	g.Go(func() error { return s.cleanseBookingsThenPayments(ctx) })

	return g.Wait()
}

func (s *CleansingService) read(ctx context.Context, table string) ([]byte, error) {
	raw, err := s.store.Download(ctx, s.lake, domain.TablePath(domain.TierBronze, table))
	if err != nil {
		return nil, fmt.Errorf("read bronze %s: %w", table, err)
	}
	return raw, nil
}

func (s *CleansingService) write(ctx context.Context, table string, data []byte, rows int) error {
	if err := s.store.Upload(ctx, s.lake, domain.TablePath(domain.TierSilver, table), data); err != nil {
		return fmt.Errorf("write silver %s: %w", table, err)
	}
	observability.AddTableRows("silver", table, "written", rows)
	log.Info().Str("table", table).Int("rows", rows).Msg("silver table written")
	return nil
}

func (s *CleansingService) cleanseHotels(ctx context.Context) error {
	raw, err := s.read(ctx, "hotels")
	if err != nil {
		return err
	}
	hs, err := tabular.DecodeHotels(raw)
	if err != nil {
		return err
	}
	observability.AddTableRows("silver", "hotels", "read", len(hs))
	clean := CleanHotels(hs)
	out, err := tabular.EncodeHotels(clean)
	if err != nil {
		return err
	}
	return s.write(ctx, "hotels", out, len(clean))
}

func (s *CleansingService) cleanseCustomers(ctx context.Context) error {
	raw, err := s.read(ctx, "customers")
	if err != nil {
		return err
	}
	cs, err := tabular.DecodeCustomers(raw)
	if err != nil {
		return err
	}
	observability.AddTableRows("silver", "customers", "read", len(cs))
	clean := CleanCustomers(cs)
	out, err := tabular.EncodeCustomers(clean)
	if err != nil {
		return err
	}
	return s.write(ctx, "customers", out, len(clean))
}

func (s *CleansingService) cleanseRooms(ctx context.Context) error {
	raw, err := s.read(ctx, "rooms")
	if err != nil {
		return err
	}
	rs, err := tabular.DecodeRooms(raw)
	if err != nil {
		return err
	}
	observability.AddTableRows("silver", "rooms", "read", len(rs))
	clean := CleanRooms(rs)
	out, err := tabular.EncodeRooms(clean)
	if err != nil {
		return err
	}
	return s.write(ctx, "rooms", out, len(clean))
}

func (s *CleansingService) cleanseBookingsThenPayments(ctx context.Context) error {
	rawB, err := s.read(ctx, "bookings")
	if err != nil {
		return err
	}
	bs, err := tabular.DecodeBookings(rawB)
	if err != nil {
		return err
	}
	observability.AddTableRows("silver", "bookings", "read", len(bs))
	cleanB := CleanBookings(bs)
	outB, err := tabular.EncodeBookings(cleanB)
	if err != nil {
		return err
	}
	if err := s.write(ctx, "bookings", outB, len(cleanB)); err != nil {
		return err
	}

	rawP, err := s.read(ctx, "payments")
	if err != nil {
		return err
	}
	ps, err := tabular.DecodePayments(rawP)
	if err != nil {
		return err
	}
	observability.AddTableRows("silver", "payments", "read", len(ps))
	cleanP := CleanPayments(ps, cleanB)
	outP, err := tabular.EncodePayments(cleanP)
	if err != nil {
		return err
	}
	return s.write(ctx, "payments", outP, len(cleanP))
}

// ---- pure rules ----

// CleanHotels drops rows whose country carries the "unknown" sentinel.
// This is the only rule in the engine allowed to discard data.
func CleanHotels(hs []domain.Hotel) []domain.Hotel {
	out := make([]domain.Hotel, 0, len(hs))
	for _, h := range hs {
		if h.Country == domain.UnknownCountry {
			continue
		}
		out = append(out, h)
	}
	return out
}

// CleanCustomers blanks whitespace-only emails and deduplicates by
// customer_id keeping the first occurrence in input order.
func CleanCustomers(cs []domain.Customer) []domain.Customer {
	seen := make(map[int64]bool, len(cs))
	out := make([]domain.Customer, 0, len(cs))
	for _, c := range cs {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if c.Email != nil && isBlank(*c.Email) {
			c.Email = nil
		}
		out = append(out, c)
	}
	return out
}

// CleanRooms deduplicates by room_id, first occurrence wins.
func CleanRooms(rs []domain.Room) []domain.Room {
	seen := make(map[string]bool, len(rs))
	out := make([]domain.Room, 0, len(rs))
	for _, r := range rs {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

// CleanBookings swaps inverted date pairs, blanks negative amounts and
// off-whitelist currencies. Rows are never dropped; unparseable dates
// arrive here already unset from the codec.
func CleanBookings(bs []domain.Booking) []domain.Booking {
	out := make([]domain.Booking, 0, len(bs))
	for _, b := range bs {
		if b.Checkin != nil && b.Checkout != nil && b.Checkin.After(*b.Checkout) {
			b.Checkin, b.Checkout = b.Checkout, b.Checkin
		}
		if b.TotalAmount != nil && *b.TotalAmount < 0 {
			b.TotalAmount = nil
		}
		b.Currency = normalizeCurrency(b.Currency)
		out = append(out, b)
	}
	return out
}

// CleanPayments reconciles payments against the CLEANED bookings.
// An unmatched payment is flagged orphan, never rejected. OverAmount is
// left unset for orphans and for bookings with an unset total: a false
// there would claim a comparison that never happened.
func CleanPayments(ps []domain.Payment, bookings []domain.Booking) []domain.Payment {
	totals := make(map[int64]*float64, len(bookings))
	for _, b := range bookings {
		if _, ok := totals[b.ID]; !ok {
			totals[b.ID] = b.TotalAmount
		}
	}
	out := make([]domain.Payment, 0, len(ps))
	for _, p := range ps {
		total, matched := totals[p.BookingID]
		p.Orphan = !matched
		p.OverAmount = nil
		if matched && total != nil {
			over := p.Amount > *total
			p.OverAmount = &over
		}
		p.Currency = normalizeCurrency(p.Currency)
		out = append(out, p)
	}
	return out
}

func normalizeCurrency(c *string) *string {
	if c == nil || !domain.ValidCurrencies[*c] {
		return nil
	}
	return c
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
