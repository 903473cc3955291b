package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var providerSortFields = map[string]func(*structs.Provider) string{
	"uuid":   func(p *structs.Provider) string { return p.UUID },
	"name":   func(p *structs.Provider) string { return p.Name },
	"type":   func(p *structs.Provider) string { return string(p.Type) },
	"status": func(p *structs.Provider) string { return string(p.Status) },
}

// ProviderByUUID returns the provider with the given UUID, or nil.
func (t *Txn) ProviderByUUID(uuid string) (*structs.Provider, error) {
	return firstByIndex[*structs.Provider](t, TableProviders, indexID, uuid)
}

// Providers lists providers with the query options applied.
func (t *Txn) Providers(opts structs.QueryOptions) ([]*structs.Provider, error) {
	return listTable(t, TableProviders, opts, providerSortFields)
}

// UpsertProvider inserts or replaces a provider, stamping the transaction's
// write index and preserving the create index of an existing entry.
func (t *Txn) UpsertProvider(p *structs.Provider) error {
	existing, err := t.ProviderByUUID(p.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		p.CreateIndex = existing.CreateIndex
	} else {
		p.CreateIndex = t.Index
	}
	p.ModifyIndex = t.Index

	if err := t.Insert(TableProviders, p); err != nil {
		return fmt.Errorf("provider insert failed: %v", err)
	}
	return nil
}

// DeleteProvider removes the provider with the given UUID. Cascading to the
// provider's regions and projects is the provider manager's responsibility.
func (t *Txn) DeleteProvider(uuid string) error {
	existing, err := t.ProviderByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("provider %q not found", uuid)
	}
	if err := t.Delete(TableProviders, existing); err != nil {
		return fmt.Errorf("provider delete failed: %v", err)
	}
	return nil
}
