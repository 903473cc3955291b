package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var serviceSortFields = map[string]func(*structs.Service) string{
	"uuid":     func(s *structs.Service) string { return s.UUID },
	"name":     func(s *structs.Service) string { return s.Name },
	"type":     func(s *structs.Service) string { return string(s.Type) },
	"endpoint": func(s *structs.Service) string { return s.Endpoint },
}

// ServiceByUUID returns the service with the given UUID, or nil.
func (t *Txn) ServiceByUUID(uuid string) (*structs.Service, error) {
	return firstByIndex[*structs.Service](t, TableServices, indexID, uuid)
}

// ServiceByEndpoint returns the service registered at the given endpoint, or
// nil. Endpoints are unique across the catalog.
func (t *Txn) ServiceByEndpoint(endpoint string) (*structs.Service, error) {
	return firstByIndex[*structs.Service](t, TableServices, indexEndpoint, endpoint)
}

// Services lists services with the query options applied.
func (t *Txn) Services(opts structs.QueryOptions) ([]*structs.Service, error) {
	return listTable(t, TableServices, opts, serviceSortFields)
}

// ServicesByRegion returns all services owned by the given region.
func (t *Txn) ServicesByRegion(regionID string) ([]*structs.Service, error) {
	return allByIndex[*structs.Service](t, TableServices, indexRegion, regionID)
}

// UpsertService inserts or replaces a service, stamping the transaction's
// write index and preserving the create index of an existing entry.
func (t *Txn) UpsertService(s *structs.Service) error {
	existing, err := t.ServiceByUUID(s.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.CreateIndex = existing.CreateIndex
	} else {
		s.CreateIndex = t.Index
	}
	s.ModifyIndex = t.Index

	if err := t.Insert(TableServices, s); err != nil {
		return fmt.Errorf("service insert failed: %v", err)
	}
	return nil
}

// DeleteService removes the service with the given UUID. Cascading to the
// service's children is the service manager's responsibility.
func (t *Txn) DeleteService(uuid string) error {
	existing, err := t.ServiceByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("service %q not found", uuid)
	}
	if err := t.Delete(TableServices, existing); err != nil {
		return fmt.Errorf("service delete failed: %v", err)
	}
	return nil
}
