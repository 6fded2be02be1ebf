package domain

import (
	"fmt"
	"time"
)

// Snapshot is the export/import format of the whole registry: every record (sealed secrets only)
// and every usage counter, keyed by record id.
type Snapshot struct {
	Keys       map[string]*KeyRecord    `json:"keys"`
	Usage      map[string]*UsageCounter `json:"usage"`
	ExportedAt time.Time                `json:"exported_at"`
}

// Validate checks that the snapshot can replace the registry wholesale.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: empty payload", ErrInvalidSnapshot)
	}

	for id, record := range s.Keys {
		switch {
		case record == nil:
			return fmt.Errorf("%w: key %q is null", ErrInvalidSnapshot, id)
		case id == "" || record.ID != id:
			return fmt.Errorf("%w: key %q does not match its key_id %q", ErrInvalidSnapshot, id, record.ID)
		case record.ServiceName == "":
			return fmt.Errorf("%w: key %q has no service_name", ErrInvalidSnapshot, id)
		case len(record.SealedSecret) == 0:
			return fmt.Errorf("%w: key %q has no sealed_secret", ErrInvalidSnapshot, id)
		case record.RateLimit <= 0:
			return fmt.Errorf("%w: key %q has a non-positive rate_limit", ErrInvalidSnapshot, id)
		}
	}

	for id := range s.Usage {
		if _, ok := s.Keys[id]; !ok {
			return fmt.Errorf("%w: usage %q has no matching key", ErrInvalidSnapshot, id)
		}
	}

	return nil
}
