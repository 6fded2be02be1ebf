// Package repository implements persistence for the vault.
//
// The live registry is held in memory only. Stored backups of registry snapshots are written to
// PostgreSQL or MySQL when a database is configured.
package repository

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// entry pairs a record with its counter under one lock. id, serviceName and createdAt are
// immutable copies readable without the lock.
type entry struct {
	id          string
	serviceName string
	createdAt   time.Time

	mu      sync.Mutex
	record  *vaultDomain.KeyRecord
	usage   *vaultDomain.UsageCounter
	deleted bool
}

// MemoryRegistry is the in-memory store of key records and usage counters.
//
// Lock order: mu before any entry lock. mu is never acquired while an entry lock is held, so
// operations on different records never wait on each other beyond the brief map lookup.
type MemoryRegistry struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	byService map[string][]string
	now       func() time.Time
	newID     func() (uuid.UUID, error)
}

// NewMemoryRegistry creates an empty registry using the wall clock.
func NewMemoryRegistry() *MemoryRegistry {
	return NewMemoryRegistryWithClock(time.Now)
}

// NewMemoryRegistryWithClock creates an empty registry that reads time from now.
func NewMemoryRegistryWithClock(now func() time.Time) *MemoryRegistry {
	return &MemoryRegistry{
		entries:   make(map[string]*entry),
		byService: make(map[string][]string),
		now:       func() time.Time { return now().UTC() },
		newID:     uuid.NewV7,
	}
}

// Create inserts a new active record with a zeroed counter.
func (r *MemoryRegistry) Create(
	ctx context.Context,
	input *vaultDomain.NewKeyRecordInput,
) (*vaultDomain.KeyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.freshID()
	if err != nil {
		return nil, err
	}

	now := r.now()
	record := &vaultDomain.KeyRecord{
		ID:             id,
		ServiceName:    input.ServiceName,
		SealedSecret:   slices.Clone(input.SealedSecret),
		Description:    input.Description,
		AllowedCallers: vaultDomain.NormalizeCallers(input.AllowedCallers),
		RateLimit:      input.RateLimit,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	r.entries[id] = newEntry(record, &vaultDomain.UsageCounter{})
	r.byService[record.ServiceName] = append(r.byService[record.ServiceName], id)

	return record.Clone(), nil
}

func newEntry(record *vaultDomain.KeyRecord, usage *vaultDomain.UsageCounter) *entry {
	return &entry{
		id:          record.ID,
		serviceName: record.ServiceName,
		createdAt:   record.CreatedAt,
		record:      record,
		usage:       usage,
	}
}

func compareEntries(a, b *entry) int {
	if c := a.createdAt.Compare(b.createdAt); c != 0 {
		return c
	}
	return strings.Compare(a.id, b.id)
}

// freshID must be called with mu held for writing.
func (r *MemoryRegistry) freshID() (string, error) {
	for {
		id, err := r.newID()
		if err != nil {
			return "", apperrors.Wrap(err, "failed to generate key id")
		}
		if _, exists := r.entries[id.String()]; !exists {
			return id.String(), nil
		}
	}
}

// lookup returns the locked entry for id, or ErrKeyNotFound. The caller must unlock it.
func (r *MemoryRegistry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, vaultDomain.ErrKeyNotFound
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, vaultDomain.ErrKeyNotFound
	}
	return e, nil
}

// Get returns a copy of the record with the given id.
func (r *MemoryRegistry) Get(ctx context.Context, id string) (*vaultDomain.KeyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	return e.record.Clone(), nil
}

// candidates returns the entries sharing serviceName, in resolution order.
func (r *MemoryRegistry) candidates(serviceName string) []*entry {
	r.mu.RLock()
	ids := r.byService[serviceName]
	found := make([]*entry, 0, len(ids))
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			found = append(found, e)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(found, compareEntries)
	return found
}

// resolve locks and returns the first active, live entry for serviceName.
func (r *MemoryRegistry) resolve(serviceName string) (*entry, error) {
	for _, e := range r.candidates(serviceName) {
		e.mu.Lock()
		if !e.deleted && e.record.Active {
			return e, nil
		}
		e.mu.Unlock()
	}
	return nil, vaultDomain.ErrServiceNotFound
}

// FindActiveByService returns the active record resolving serviceName. When several active
// records share the name, the earliest created wins and ties go to the lowest id.
func (r *MemoryRegistry) FindActiveByService(
	ctx context.Context,
	serviceName string,
) (*vaultDomain.KeyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.resolve(serviceName)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	return e.record.Clone(), nil
}

// Update applies fn to a copy of the record and commits the copy only when fn succeeds.
// fn receives the registry clock reading taken under the record lock.
func (r *MemoryRegistry) Update(
	ctx context.Context,
	id string,
	fn func(record *vaultDomain.KeyRecord, now time.Time) error,
) (*vaultDomain.KeyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	now := r.now()
	draft := e.record.Clone()
	if err := fn(draft, now); err != nil {
		return nil, err
	}

	// identity is immutable whatever fn did
	draft.ID = e.record.ID
	draft.ServiceName = e.record.ServiceName
	draft.CreatedAt = e.record.CreatedAt
	draft.Touch(now)

	e.record = draft
	return draft.Clone(), nil
}

// Delete removes the record and its counter together.
func (r *MemoryRegistry) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return vaultDomain.ErrKeyNotFound
	}

	e.mu.Lock()
	e.deleted = true
	e.mu.Unlock()

	delete(r.entries, id)
	ids := slices.DeleteFunc(r.byService[e.serviceName], func(other string) bool { return other == id })
	if len(ids) == 0 {
		delete(r.byService, e.serviceName)
	} else {
		r.byService[e.serviceName] = ids
	}
	return nil
}

// live copies every entry under its own lock and drops tombstones.
func (r *MemoryRegistry) live() []*entry {
	r.mu.RLock()
	all := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		all = append(all, e)
	}
	r.mu.RUnlock()

	out := make([]*entry, 0, len(all))
	for _, e := range all {
		e.mu.Lock()
		if !e.deleted {
			out = append(out, newEntry(e.record.Clone(), e.usage.Clone()))
		}
		e.mu.Unlock()
	}

	slices.SortFunc(out, compareEntries)
	return out
}

// List returns every record joined with its usage totals, in resolution order.
func (r *MemoryRegistry) List(ctx context.Context) ([]*vaultDomain.KeyRecordSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := r.live()
	summaries := make([]*vaultDomain.KeyRecordSummary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, vaultDomain.NewKeyRecordSummary(e.record, e.usage))
	}
	return summaries, nil
}

// Admit resolves the active record for serviceName and, holding only that record's lock,
// runs authorize and then consumes one slot of the record's rate window. A denied admission
// returns a rate limit error and records a hit. On success the returned grant carries a copy of
// the sealed secret, to be opened after the lock is released.
func (r *MemoryRegistry) Admit(
	ctx context.Context,
	serviceName string,
	authorize func(record *vaultDomain.KeyRecord) error,
) (*vaultDomain.Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.resolve(serviceName)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	if authorize != nil {
		if err := authorize(e.record); err != nil {
			return nil, err
		}
	}

	admission := e.usage.TryAdmit(e.record.RateLimit, r.now())
	if !admission.Admitted {
		return nil, vaultDomain.NewRateLimitError(admission)
	}

	return &vaultDomain.Grant{
		KeyID:        e.record.ID,
		ServiceName:  e.record.ServiceName,
		SealedSecret: slices.Clone(e.record.SealedSecret),
		Admission:    admission,
	}, nil
}

// Usage reports the counter of the record with the given id.
func (r *MemoryRegistry) Usage(ctx context.Context, id string) (*vaultDomain.UsageStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	defer e.mu.Unlock()

	stats := &vaultDomain.UsageStats{
		KeyID:         e.record.ID,
		TotalCalls:    e.usage.TotalCalls,
		CallsLastHour: e.usage.CallsInWindow(r.now()),
		RateLimitHits: e.usage.RateLimitHits,
		RateLimit:     e.record.RateLimit,
		Active:        e.record.Active,
	}
	if e.usage.LastUsed != nil {
		lastUsed := *e.usage.LastUsed
		stats.LastUsed = &lastUsed
	}
	return stats, nil
}

// Stats counts total and active records.
func (r *MemoryRegistry) Stats(ctx context.Context) (*vaultDomain.VaultStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := &vaultDomain.VaultStatus{}
	for _, e := range r.live() {
		status.TotalKeys++
		if e.record.Active {
			status.ActiveKeys++
		}
	}
	return status, nil
}

// Snapshot copies every record and counter. Concurrent structural changes are excluded for the
// duration, so the snapshot is a consistent cut.
func (r *MemoryRegistry) Snapshot(ctx context.Context) (*vaultDomain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := &vaultDomain.Snapshot{
		Keys:       make(map[string]*vaultDomain.KeyRecord, len(r.entries)),
		Usage:      make(map[string]*vaultDomain.UsageCounter, len(r.entries)),
		ExportedAt: r.now(),
	}

	// Lock every entry before copying any, so in-flight admissions land wholly before or after.
	locked := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		e.mu.Lock()
		locked = append(locked, e)
	}
	for _, e := range locked {
		snapshot.Keys[e.id] = e.record.Clone()
		snapshot.Usage[e.id] = e.usage.Clone()
		e.mu.Unlock()
	}

	return snapshot, nil
}

// Restore replaces the whole registry with snapshot. Records absent from the snapshot are
// gone afterwards; there is no merge. Records without a usage entry get a zeroed counter.
func (r *MemoryRegistry) Restore(ctx context.Context, snapshot *vaultDomain.Snapshot) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := snapshot.Validate(); err != nil {
		return 0, err
	}

	now := r.now()
	entries := make(map[string]*entry, len(snapshot.Keys))
	byService := make(map[string][]string)
	for id, record := range snapshot.Keys {
		usage := snapshot.Usage[id].Clone()
		if usage == nil {
			usage = &vaultDomain.UsageCounter{}
		}
		usage.DropAfter(now)
		entries[id] = newEntry(record.Clone(), usage)
		byService[record.ServiceName] = append(byService[record.ServiceName], id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		e.mu.Lock()
		e.deleted = true
		e.mu.Unlock()
	}
	r.entries = entries
	r.byService = byService

	return len(entries), nil
}
