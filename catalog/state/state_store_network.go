package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var networkSortFields = map[string]func(*structs.Network) string{
	"uuid": func(n *structs.Network) string { return n.UUID },
	"name": func(n *structs.Network) string { return n.Name },
}

// NetworkByUUID returns the network with the given UUID, or nil.
func (t *Txn) NetworkByUUID(uuid string) (*structs.Network, error) {
	return firstByIndex[*structs.Network](t, TableNetworks, indexID, uuid)
}

// Networks lists networks with the query options applied.
func (t *Txn) Networks(opts structs.QueryOptions) ([]*structs.Network, error) {
	return listTable(t, TableNetworks, opts, networkSortFields)
}

// NetworksByService returns the networks owned by the given service.
func (t *Txn) NetworksByService(serviceID string) ([]*structs.Network, error) {
	return allByIndex[*structs.Network](t, TableNetworks, indexService, serviceID)
}

// NetworksByProject returns the networks reserved for the given project.
func (t *Txn) NetworksByProject(projectID string) ([]*structs.Network, error) {
	return allByIndex[*structs.Network](t, TableNetworks, indexProject, projectID)
}

// UpsertNetwork inserts or replaces a network, stamping the transaction's
// write index and preserving the create index of an existing entry.
func (t *Txn) UpsertNetwork(n *structs.Network) error {
	existing, err := t.NetworkByUUID(n.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		n.CreateIndex = existing.CreateIndex
	} else {
		n.CreateIndex = t.Index
	}
	n.ModifyIndex = t.Index

	if err := t.Insert(TableNetworks, n); err != nil {
		return fmt.Errorf("network insert failed: %v", err)
	}
	return nil
}

// DeleteNetwork removes the network with the given UUID.
func (t *Txn) DeleteNetwork(uuid string) error {
	existing, err := t.NetworkByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("network %q not found", uuid)
	}
	if err := t.Delete(TableNetworks, existing); err != nil {
		return fmt.Errorf("network delete failed: %v", err)
	}
	return nil
}
