package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var projectSortFields = map[string]func(*structs.Project) string{
	"uuid": func(p *structs.Project) string { return p.UUID },
	"name": func(p *structs.Project) string { return p.Name },
}

// ProjectByUUID returns the project with the given UUID, or nil.
func (t *Txn) ProjectByUUID(uuid string) (*structs.Project, error) {
	return firstByIndex[*structs.Project](t, TableProjects, indexID, uuid)
}

// Projects lists projects with the query options applied.
func (t *Txn) Projects(opts structs.QueryOptions) ([]*structs.Project, error) {
	return listTable(t, TableProjects, opts, projectSortFields)
}

// ProjectsByProvider returns all projects owned by the given provider. This
// is the candidate pool used to resolve project references during service
// reconciliation.
func (t *Txn) ProjectsByProvider(providerID string) ([]*structs.Project, error) {
	return allByIndex[*structs.Project](t, TableProjects, indexProvider, providerID)
}

// UpsertProject inserts or replaces a project, stamping the transaction's
// write index and preserving the create index of an existing entry.
func (t *Txn) UpsertProject(p *structs.Project) error {
	existing, err := t.ProjectByUUID(p.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		p.CreateIndex = existing.CreateIndex
	} else {
		p.CreateIndex = t.Index
	}
	p.ModifyIndex = t.Index

	if err := t.Insert(TableProjects, p); err != nil {
		return fmt.Errorf("project insert failed: %v", err)
	}
	return nil
}

// DeleteProject removes the project with the given UUID. Cascading to the
// project's quotas and child links is the project manager's responsibility.
func (t *Txn) DeleteProject(uuid string) error {
	existing, err := t.ProjectByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("project %q not found", uuid)
	}
	if err := t.Delete(TableProjects, existing); err != nil {
		return fmt.Errorf("project delete failed: %v", err)
	}
	return nil
}
