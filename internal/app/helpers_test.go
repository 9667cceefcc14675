package app_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/Alice-Macchia/hotel-data-pipeline-project/internal/domain"
)

// memStore is an in-memory LakeStore for tests.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte // "<container>/<path>"
}

func newMemStore() *memStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) List(ctx context.Context, container, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.blobs {
		if rest, ok := strings.CutPrefix(k, container+"/"); ok && strings.HasPrefix(rest, prefix) {
			out = append(out, rest)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) Download(ctx context.Context, container, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[container+"/"+path]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", container, path, domain.ErrNotFound)
	}
	return data, nil
}

func (m *memStore) Upload(ctx context.Context, container, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[container+"/"+path] = data
	return nil
}

func (m *memStore) has(container, path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[container+"/"+path]
	return ok
}

// seedLanding drops the five raw entity files into the landing-zone
// container: one confirmed booking, one cancelled booking with bad
// amount/currency, both for room R1 with overlapping stays, plus a
// duplicate customer, a duplicate room, an XX hotel and an orphan payment.
func seedLanding(t *testing.T, store *memStore) {
	t.Helper()
	files := map[string]string{
		"hotels.csv": "hotel_id,name,country\n" +
			"H1,Grand Plaza,IT\n" +
			"H2,Mystery Inn,XX\n",
		"customers.csv": "customer_id,first_name,last_name,email\n" +
			"10,Ada,Lovelace,ada@example.com\n" +
			"11,Bob,Gray,   \n" +
			"10,Ada,Duplicate,dup@example.com\n",
		"rooms.csv": "room_id,hotel_id,room_type\n" +
			"R1,H1,double\n" +
			"R1,H1,double\n" +
			"R2,H1,single\n",
		"bookings.csv": "booking_id,customer_id,room_id,hotel_id,checkin_date,checkout_date,total_amount,currency,status,source\n" +
			"1,10,R1,H1,2024-03-01,2024-03-04,300,EUR,confirmed,web\n" +
			"2,11,R1,H1,2024-03-03,2024-03-06,-50,XXX,cancelled,web\n",
		"payments.csv": "payment_id,booking_id,amount,currency\n" +
			"100,1,300,EUR\n" +
			"101,99,10,EUR\n",
	}
	for name, body := range files {
		if err := store.Upload(context.Background(), "landing-zone", name, []byte(body)); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}
}

// seedBronze is seedLanding with the ingestion stamp already applied,
// for tests that start at the silver stage.
func seedBronze(t *testing.T, store *memStore) {
	t.Helper()
	seedLanding(t, store)
	names, _ := store.List(context.Background(), "landing-zone", "")
	for _, name := range names {
		data, err := store.Download(context.Background(), "landing-zone", name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		table := strings.TrimSuffix(name, ".csv")
		tagged := tagRows(string(data), "2024-03-10 08:00:00")
		if err := store.Upload(context.Background(), "datalake", domain.TablePath(domain.TierBronze, table), []byte(tagged)); err != nil {
			t.Fatalf("seed bronze %s: %v", table, err)
		}
	}
}

func tagRows(csv, stamp string) string {
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	lines[0] += ",ingestion_date"
	for i := 1; i < len(lines); i++ {
		lines[i] += "," + stamp
	}
	return strings.Join(lines, "\n") + "\n"
}
