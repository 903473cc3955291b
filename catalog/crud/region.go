package crud

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/helper/uuid"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

// RegionManager mutates regions.
type RegionManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers a region under a provider.
func (m *RegionManager) Create(spec *structs.RegionSpec) (*structs.Region, error) {
	defer metrics.MeasureSince([]string{"catalogd", "region", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	provider, err := txn.ProviderByUUID(spec.Provider)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("provider %q: %w", spec.Provider, structs.ErrNotFound)
	}

	r, err := m.createTxn(txn, spec, provider)
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return r, nil
}

// createTxn builds and stores a region inside the caller's transaction.
func (m *RegionManager) createTxn(txn *state.Txn, spec *structs.RegionSpec, provider *structs.Provider) (*structs.Region, error) {
	r := &structs.Region{
		UUID:        uuid.Generate(),
		Name:        spec.Name,
		Description: spec.Description,
		ProviderID:  provider.UUID,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertRegion(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update patches a region. Returns nil without error when nothing changed.
func (m *RegionManager) Update(uuidArg string, upd *structs.RegionUpdate, force bool) (*structs.Region, error) {
	defer metrics.MeasureSince([]string{"catalogd", "region", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	r, err := txn.RegionByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("region %q: %w", uuidArg, structs.ErrNotFound)
	}

	out := r.Copy()
	if !out.ApplyUpdate(upd, force) {
		return nil, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertRegion(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// Delete removes a region and cascades over its services.
func (m *RegionManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "region", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	r, err := txn.RegionByUUID(uuidArg)
	if err != nil {
		return err
	}
	if r == nil {
		return fmt.Errorf("region %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := m.removeTxn(txn, r); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// removeTxn cascades the deletion inside the caller's transaction.
func (m *RegionManager) removeTxn(txn *state.Txn, r *structs.Region) error {
	services, err := txn.ServicesByRegion(r.UUID)
	if err != nil {
		return err
	}
	for _, svc := range services {
		if err := m.c.Services.removeTxn(txn, svc); err != nil {
			return err
		}
	}
	return txn.DeleteRegion(r.UUID)
}
