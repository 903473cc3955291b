// Package state provides the transactional entity store backing the catalog.
//
// The store is built on go-memdb. Entities are immutable once inserted:
// readers receive the stored pointer and must copy before mutating, writers
// insert fresh copies. Every REST request runs inside exactly one transaction
// obtained from ReadTxn or WriteTxn; the CRUD managers thread that
// transaction through all of their entity operations so a reconciliation
// either commits as a whole or not at all.
package state

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/hashicorp/go-hclog"
	memdb "github.com/hashicorp/go-memdb"
)

// StateStore holds the catalog entities.
type StateStore struct {
	logger hclog.Logger
	db     *memdb.MemDB

	// nextIndex is the write-index counter; every write transaction gets the
	// next value and stamps it on the entities it modifies. Accessed
	// atomically.
	nextIndex uint64
}

// NewStateStore constructs an empty catalog store.
func NewStateStore(logger hclog.Logger) (*StateStore, error) {
	db, err := memdb.NewMemDB(stateStoreSchema())
	if err != nil {
		return nil, fmt.Errorf("state store setup failed: %v", err)
	}
	return &StateStore{
		logger: logger.Named("state_store"),
		db:     db,
	}, nil
}

// Txn is a single read or write transaction against the store. Write
// transactions carry the index stamped onto modified entities.
type Txn struct {
	*memdb.Txn
	Index uint64
}

// ReadTxn returns a read-only transaction. Aborting a read transaction is the
// only way to release it.
func (s *StateStore) ReadTxn() *Txn {
	return &Txn{Txn: s.db.Txn(false)}
}

// WriteTxn returns a write transaction with a freshly allocated write index.
func (s *StateStore) WriteTxn() *Txn {
	return &Txn{
		Txn:   s.db.Txn(true),
		Index: atomic.AddUint64(&s.nextIndex, 1),
	}
}

// firstByIndex is the shared single-entity lookup.
func firstByIndex[T any](txn *Txn, table, index, value string) (T, error) {
	var zero T
	raw, err := txn.First(table, index, value)
	if err != nil {
		return zero, fmt.Errorf("%s lookup failed: %v", table, err)
	}
	if raw == nil {
		return zero, nil
	}
	return raw.(T), nil
}

// allByIndex collects every entity matching an index value.
func allByIndex[T any](txn *Txn, table, index, value string) ([]T, error) {
	iter, err := txn.Get(table, index, value)
	if err != nil {
		return nil, fmt.Errorf("%s lookup failed: %v", table, err)
	}
	var out []T
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		out = append(out, raw.(T))
	}
	return out, nil
}

// listTable returns a whole table with the query options applied. sortFields
// maps the accepted sort field names onto string extractors; the id order of
// the table is the default.
func listTable[T any](txn *Txn, table string, opts structs.QueryOptions, sortFields map[string]func(T) string) ([]T, error) {
	iter, err := txn.Get(table, indexID)
	if err != nil {
		return nil, fmt.Errorf("%s lookup failed: %v", table, err)
	}
	var out []T
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		out = append(out, raw.(T))
	}

	if field, descending := opts.SortField(); field != "" {
		extract, ok := sortFields[field]
		if !ok {
			return nil, fmt.Errorf("unknown sort field %q for %s", field, table)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if descending {
				return extract(out[i]) > extract(out[j])
			}
			return extract(out[i]) < extract(out[j])
		})
	}

	return applyLimitAndSkip(out, opts), nil
}

func applyLimitAndSkip[T any](items []T, opts structs.QueryOptions) []T {
	if opts.Skip > 0 {
		if opts.Skip >= len(items) {
			return nil
		}
		items = items[opts.Skip:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
