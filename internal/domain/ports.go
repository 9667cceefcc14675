package domain

import "context"

// LakeStore is the storage capability the pipeline stages are given.
// Implementations persist whole tables as opaque byte blobs under
// <container>/<path>; Upload always overwrites.
type LakeStore interface {
	// List returns the paths under container that start with prefix,
	// in lexical order.
	List(ctx context.Context, container, prefix string) ([]string, error)
	// Download returns the full blob, or ErrNotFound if absent.
	Download(ctx context.Context, container, path string) ([]byte, error)
	Upload(ctx context.Context, container, path string, data []byte) error
}

// Tier path convention shared by every stage: <tier>/<table>/<table>.csv.
const (
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

func TablePath(tier, table string) string {
	return tier + "/" + table + "/" + table + ".csv"
}

// EntityTables is the fixed table set, in cleansing order: payments is
// last because its rules consume the cleaned bookings output.
var EntityTables = []string{"hotels", "customers", "rooms", "bookings", "payments"}
