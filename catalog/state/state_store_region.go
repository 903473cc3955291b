package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var regionSortFields = map[string]func(*structs.Region) string{
	"uuid": func(r *structs.Region) string { return r.UUID },
	"name": func(r *structs.Region) string { return r.Name },
}

// RegionByUUID returns the region with the given UUID, or nil.
func (t *Txn) RegionByUUID(uuid string) (*structs.Region, error) {
	return firstByIndex[*structs.Region](t, TableRegions, indexID, uuid)
}

// Regions lists regions with the query options applied.
func (t *Txn) Regions(opts structs.QueryOptions) ([]*structs.Region, error) {
	return listTable(t, TableRegions, opts, regionSortFields)
}

// RegionsByProvider returns all regions owned by the given provider.
func (t *Txn) RegionsByProvider(providerID string) ([]*structs.Region, error) {
	return allByIndex[*structs.Region](t, TableRegions, indexProvider, providerID)
}

// UpsertRegion inserts or replaces a region, stamping the transaction's write
// index and preserving the create index of an existing entry.
func (t *Txn) UpsertRegion(r *structs.Region) error {
	existing, err := t.RegionByUUID(r.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		r.CreateIndex = existing.CreateIndex
	} else {
		r.CreateIndex = t.Index
	}
	r.ModifyIndex = t.Index

	if err := t.Insert(TableRegions, r); err != nil {
		return fmt.Errorf("region insert failed: %v", err)
	}
	return nil
}

// DeleteRegion removes the region with the given UUID. Cascading to the
// region's services is the region manager's responsibility.
func (t *Txn) DeleteRegion(uuid string) error {
	existing, err := t.RegionByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("region %q not found", uuid)
	}
	if err := t.Delete(TableRegions, existing); err != nil {
		return fmt.Errorf("region delete failed: %v", err)
	}
	return nil
}
