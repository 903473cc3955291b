package crud

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
	"github.com/hashicorp/go-set/v3"
)

// ProjectManager mutates projects. Project UUIDs come from the provider's own
// tenant registry and are supplied by the client.
type ProjectManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers a project under a provider.
func (m *ProjectManager) Create(spec *structs.ProjectSpec) (*structs.Project, error) {
	defer metrics.MeasureSince([]string{"catalogd", "project", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	provider, err := txn.ProviderByUUID(spec.Provider)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %q: %w", spec.Provider, structs.ErrNotFound)
	}

	p, err := m.createTxn(txn, spec, provider)
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return p, nil
}

// createTxn builds and stores a project inside the caller's transaction.
func (m *ProjectManager) createTxn(txn *state.Txn, spec *structs.ProjectSpec, provider *structs.Provider) (*structs.Project, error) {
	existing, err := txn.ProjectByUUID(spec.UUID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("project %q already registered", spec.UUID)
	}

	p := &structs.Project{
		UUID:        spec.UUID,
		Name:        spec.Name,
		Description: spec.Description,
		ProviderID:  provider.UUID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertProject(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update patches a project. Returns nil without error when nothing changed.
func (m *ProjectManager) Update(uuidArg string, upd *structs.ProjectUpdate, force bool) (*structs.Project, error) {
	defer metrics.MeasureSince([]string{"catalogd", "project", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	p, err := txn.ProjectByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", uuidArg, structs.ErrNotFound)
	}

	out := p.Copy()
	if !out.ApplyUpdate(upd, force) {
		return nil, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertProject(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// Delete removes a project and everything hanging off it: its quotas and SLA
// are deleted, its flavor and image restrictions are lifted and its private
// networks lose their reservation.
func (m *ProjectManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "project", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	p, err := txn.ProjectByUUID(uuidArg)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("project %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := m.removeTxn(txn, p); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// removeTxn cascades the deletion inside the caller's transaction.
func (m *ProjectManager) removeTxn(txn *state.Txn, p *structs.Project) error {
	quotas, err := txn.QuotasByProject(p.UUID)
	if err != nil {
		return err
	}
	for _, q := range quotas {
		if err := txn.DeleteQuota(q.UUID); err != nil {
			return err
		}
	}

	flavors, err := txn.FlavorsByProject(p.UUID)
	if err != nil {
		return err
	}
	for _, f := range flavors {
		out := f.Copy()
		links := set.From(out.ProjectIDs)
		links.Remove(p.UUID)
		out.ProjectIDs = links.Slice()
		if err := txn.UpsertFlavor(out); err != nil {
			return err
		}
	}

	images, err := txn.ImagesByProject(p.UUID)
	if err != nil {
		return err
	}
	for _, i := range images {
		out := i.Copy()
		links := set.From(out.ProjectIDs)
		links.Remove(p.UUID)
		out.ProjectIDs = links.Slice()
		if err := txn.UpsertImage(out); err != nil {
			return err
		}
	}

	networks, err := txn.NetworksByProject(p.UUID)
	if err != nil {
		return err
	}
	for _, n := range networks {
		out := n.Copy()
		out.ProjectID = ""
		if err := txn.UpsertNetwork(out); err != nil {
			return err
		}
	}

	sla, err := txn.SLAByProject(p.UUID)
	if err != nil {
		return err
	}
	if sla != nil {
		if err := txn.DeleteSLA(sla.UUID); err != nil {
			return err
		}
	}

	return txn.DeleteProject(p.UUID)
}
