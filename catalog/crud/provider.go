package crud

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/helper/uuid"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

// ProviderManager mutates providers, the roots of the catalog hierarchy.
type ProviderManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers a provider together with the optional initial regions and
// projects nested in the payload.
func (m *ProviderManager) Create(spec *structs.ProviderSpec) (*structs.Provider, error) {
	defer metrics.MeasureSince([]string{"catalogd", "provider", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	p := &structs.Provider{
		UUID:          uuid.Generate(),
		Name:          spec.Name,
		Type:          spec.Type,
		Status:        spec.Status,
		IsPublic:      spec.IsPublic,
		Description:   spec.Description,
		SupportEmails: spec.SupportEmails,
	}
	p.Canonicalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertProvider(p); err != nil {
		return nil, err
	}

	for _, rs := range spec.Regions {
		if _, err := m.c.Regions.createTxn(txn, rs, p); err != nil {
			return nil, err
		}
	}
	for _, ps := range spec.Projects {
		if _, err := m.c.Projects.createTxn(txn, ps, p); err != nil {
			return nil, err
		}
	}

	txn.Commit()
	return p, nil
}

// Update patches a provider. Returns nil without error when nothing changed.
func (m *ProviderManager) Update(uuidArg string, upd *structs.ProviderUpdate, force bool) (*structs.Provider, error) {
	defer metrics.MeasureSince([]string{"catalogd", "provider", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	p, err := txn.ProviderByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("provider %q: %w", uuidArg, structs.ErrNotFound)
	}

	out := p.Copy()
	if !out.ApplyUpdate(upd, force) {
		return nil, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertProvider(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// Delete removes a provider and cascades over its whole subtree: every region
// with its services and their children, then every project.
func (m *ProviderManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "provider", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	p, err := txn.ProviderByUUID(uuidArg)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("provider %q: %w", uuidArg, structs.ErrNotFound)
	}

	regions, err := txn.RegionsByProvider(p.UUID)
	if err != nil {
		return err
	}
	for _, r := range regions {
		if err := m.c.Regions.removeTxn(txn, r); err != nil {
			return err
		}
	}

	projects, err := txn.ProjectsByProvider(p.UUID)
	if err != nil {
		return err
	}
	for _, proj := range projects {
		if err := m.c.Projects.removeTxn(txn, proj); err != nil {
			return err
		}
	}

	if err := txn.DeleteProvider(p.UUID); err != nil {
		return err
	}

	txn.Commit()
	return nil
}
