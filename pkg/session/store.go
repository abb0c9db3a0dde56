package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/ldapsession/pkg/securestore"
)

// StoreKey is the fixed secure-store key the session record list lives under.
const StoreKey = "ldap.sessions"

// RecordStore serializes the session record list to and from a secure
// storage backend. There are no partial updates: callers always load,
// transform, and save the complete list.
type RecordStore struct {
	backend securestore.Backend
	key     string
}

func NewRecordStore(backend securestore.Backend) *RecordStore {
	return &RecordStore{backend: backend, key: StoreKey}
}

// Load returns the persisted records, or an empty list when nothing has been
// stored yet. Unparsable data is reported as ErrCorrupt.
func (s *RecordStore) Load(ctx context.Context) ([]Record, error) {
	raw, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, securestore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load records: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return records, nil
}

// Save overwrites the full persisted list in a single write.
func (s *RecordStore) Save(ctx context.Context, records []Record) error {
	if records == nil {
		records = []Record{}
	}

	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("session: encode records: %w", err)
	}

	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("session: save records: %w", err)
	}
	return nil
}
