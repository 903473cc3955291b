package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var slaSortFields = map[string]func(*structs.SLA) string{
	"uuid":     func(s *structs.SLA) string { return s.UUID },
	"doc_uuid": func(s *structs.SLA) string { return s.DocUUID },
}

// SLAByUUID returns the SLA with the given UUID, or nil.
func (t *Txn) SLAByUUID(uuid string) (*structs.SLA, error) {
	return firstByIndex[*structs.SLA](t, TableSLAs, indexID, uuid)
}

// SLAByProject returns the SLA covering the given project, or nil. A project
// carries at most one SLA.
func (t *Txn) SLAByProject(projectID string) (*structs.SLA, error) {
	return firstByIndex[*structs.SLA](t, TableSLAs, indexProject, projectID)
}

// SLAs lists SLAs with the query options applied.
func (t *Txn) SLAs(opts structs.QueryOptions) ([]*structs.SLA, error) {
	return listTable(t, TableSLAs, opts, slaSortFields)
}

// SLAsByUserGroup returns all SLAs granted to the given user group.
func (t *Txn) SLAsByUserGroup(groupID string) ([]*structs.SLA, error) {
	return allByIndex[*structs.SLA](t, TableSLAs, indexUserGroup, groupID)
}

// UpsertSLA inserts or replaces an SLA, stamping the transaction's write
// index and preserving the create index of an existing entry.
func (t *Txn) UpsertSLA(s *structs.SLA) error {
	existing, err := t.SLAByUUID(s.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		s.CreateIndex = existing.CreateIndex
	} else {
		s.CreateIndex = t.Index
	}
	s.ModifyIndex = t.Index

	if err := t.Insert(TableSLAs, s); err != nil {
		return fmt.Errorf("SLA insert failed: %v", err)
	}
	return nil
}

// DeleteSLA removes the SLA with the given UUID.
func (t *Txn) DeleteSLA(uuid string) error {
	existing, err := t.SLAByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("SLA %q not found", uuid)
	}
	if err := t.Delete(TableSLAs, existing); err != nil {
		return fmt.Errorf("SLA delete failed: %v", err)
	}
	return nil
}
