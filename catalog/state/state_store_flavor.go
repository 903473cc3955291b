package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var flavorSortFields = map[string]func(*structs.Flavor) string{
	"uuid": func(f *structs.Flavor) string { return f.UUID },
	"name": func(f *structs.Flavor) string { return f.Name },
}

// FlavorByUUID returns the flavor with the given UUID, or nil.
func (t *Txn) FlavorByUUID(uuid string) (*structs.Flavor, error) {
	return firstByIndex[*structs.Flavor](t, TableFlavors, indexID, uuid)
}

// Flavors lists flavors with the query options applied.
func (t *Txn) Flavors(opts structs.QueryOptions) ([]*structs.Flavor, error) {
	return listTable(t, TableFlavors, opts, flavorSortFields)
}

// FlavorsByService returns the flavors available on the given service.
func (t *Txn) FlavorsByService(serviceID string) ([]*structs.Flavor, error) {
	return allByIndex[*structs.Flavor](t, TableFlavors, indexService, serviceID)
}

// FlavorsByProject returns the flavors restricted to the given project.
func (t *Txn) FlavorsByProject(projectID string) ([]*structs.Flavor, error) {
	return allByIndex[*structs.Flavor](t, TableFlavors, indexProject, projectID)
}

// UpsertFlavor inserts or replaces a flavor, stamping the transaction's write
// index and preserving the create index of an existing entry.
func (t *Txn) UpsertFlavor(f *structs.Flavor) error {
	existing, err := t.FlavorByUUID(f.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		f.CreateIndex = existing.CreateIndex
	} else {
		f.CreateIndex = t.Index
	}
	f.ModifyIndex = t.Index

	if err := t.Insert(TableFlavors, f); err != nil {
		return fmt.Errorf("flavor insert failed: %v", err)
	}
	return nil
}

// DeleteFlavor removes the flavor with the given UUID.
func (t *Txn) DeleteFlavor(uuid string) error {
	existing, err := t.FlavorByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("flavor %q not found", uuid)
	}
	if err := t.Delete(TableFlavors, existing); err != nil {
		return fmt.Errorf("flavor delete failed: %v", err)
	}
	return nil
}
