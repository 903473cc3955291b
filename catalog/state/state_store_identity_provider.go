package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var identityProviderSortFields = map[string]func(*structs.IdentityProvider) string{
	"uuid":     func(i *structs.IdentityProvider) string { return i.UUID },
	"endpoint": func(i *structs.IdentityProvider) string { return i.Endpoint },
}

// IdentityProviderByUUID returns the identity provider with the given UUID,
// or nil.
func (t *Txn) IdentityProviderByUUID(uuid string) (*structs.IdentityProvider, error) {
	return firstByIndex[*structs.IdentityProvider](t, TableIdentityProviders, indexID, uuid)
}

// IdentityProviderByEndpoint returns the identity provider registered at the
// given endpoint, or nil. Endpoints are unique across the catalog.
func (t *Txn) IdentityProviderByEndpoint(endpoint string) (*structs.IdentityProvider, error) {
	return firstByIndex[*structs.IdentityProvider](t, TableIdentityProviders, indexEndpoint, endpoint)
}

// IdentityProviders lists identity providers with the query options applied.
func (t *Txn) IdentityProviders(opts structs.QueryOptions) ([]*structs.IdentityProvider, error) {
	return listTable(t, TableIdentityProviders, opts, identityProviderSortFields)
}

// UpsertIdentityProvider inserts or replaces an identity provider, stamping
// the transaction's write index and preserving the create index of an
// existing entry.
func (t *Txn) UpsertIdentityProvider(i *structs.IdentityProvider) error {
	existing, err := t.IdentityProviderByUUID(i.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		i.CreateIndex = existing.CreateIndex
	} else {
		i.CreateIndex = t.Index
	}
	i.ModifyIndex = t.Index

	if err := t.Insert(TableIdentityProviders, i); err != nil {
		return fmt.Errorf("identity provider insert failed: %v", err)
	}
	return nil
}

// DeleteIdentityProvider removes the identity provider with the given UUID.
// Cascading to its user groups is the identity provider manager's
// responsibility.
func (t *Txn) DeleteIdentityProvider(uuid string) error {
	existing, err := t.IdentityProviderByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("identity provider %q not found", uuid)
	}
	if err := t.Delete(TableIdentityProviders, existing); err != nil {
		return fmt.Errorf("identity provider delete failed: %v", err)
	}
	return nil
}
