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

// FlavorManager mutates flavors. Flavors are shared-ownership children: the
// same flavor UUID may be offered by several compute services, so detaching a
// service only deletes the flavor when no other service still references it.
type FlavorManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create attaches a flavor to a compute service, creating it if the UUID is
// not yet known to the catalog. Project references outside the provider's
// pool are dropped.
func (m *FlavorManager) Create(serviceID string, spec *structs.FlavorSpec) (*structs.Flavor, error) {
	defer metrics.MeasureSince([]string{"catalogd", "flavor", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	svc, err := txn.ServiceByUUID(serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("service %q: %w", serviceID, structs.ErrNotFound)
	}
	if svc.Type != structs.ServiceTypeCompute {
		return nil, fmt.Errorf("service type %q does not own flavors", svc.Type)
	}

	pool, err := projectPool(txn, svc)
	if err != nil {
		return nil, err
	}

	f, err := m.createTxn(txn, spec, svc, filterProjects(pool, spec.Projects))
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return f, nil
}

// createTxn connects an existing flavor to the service or creates a fresh one
// from the spec. When the flavor already exists its scalar attributes are
// left alone; only the service and project links grow.
func (m *FlavorManager) createTxn(txn *state.Txn, spec *structs.FlavorSpec, svc *structs.Service, projects []*structs.Project) (*structs.Flavor, error) {
	existing, err := txn.FlavorByUUID(spec.UUID)
	if err != nil {
		return nil, err
	}

	var f *structs.Flavor
	if existing != nil {
		f = existing.Copy()
	} else {
		f = &structs.Flavor{
			UUID:         spec.UUID,
			Name:         spec.Name,
			Description:  spec.Description,
			Disk:         spec.Disk,
			RAM:          spec.RAM,
			VCPUs:        spec.VCPUs,
			Swap:         spec.Swap,
			Ephemeral:    spec.Ephemeral,
			GPUs:         spec.GPUs,
			IsPublic:     spec.IsPublic,
			Infiniband:   spec.Infiniband,
			GPUModel:     spec.GPUModel,
			GPUVendor:    spec.GPUVendor,
			LocalStorage: spec.LocalStorage,
		}
	}

	services := set.From(f.ServiceIDs)
	services.Insert(svc.UUID)
	f.ServiceIDs = services.Slice()

	links := set.From(f.ProjectIDs)
	for _, p := range projects {
		links.Insert(p.UUID)
	}
	f.ProjectIDs = links.Slice()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertFlavor(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Update patches a flavor's scalar attributes. Service and project links are
// maintained through service resubmissions, never here. Returns nil without
// error when nothing changed.
func (m *FlavorManager) Update(uuidArg string, upd *structs.FlavorUpdate, force bool) (*structs.Flavor, error) {
	defer metrics.MeasureSince([]string{"catalogd", "flavor", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	f, err := txn.FlavorByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fmt.Errorf("flavor %q: %w", uuidArg, structs.ErrNotFound)
	}

	out := f.Copy()
	if !out.ApplyUpdate(upd, force) {
		return nil, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertFlavor(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// updateTxn applies a full resubmitted spec inside the caller's transaction:
// the project links are reconciled to exactly the filtered subset and the
// scalar attributes are overwritten. Returns nil when nothing changed.
func (m *FlavorManager) updateTxn(txn *state.Txn, f *structs.Flavor, spec *structs.FlavorSpec, projects []*structs.Project) (*structs.Flavor, error) {
	out := f.Copy()

	want := make([]string, 0, len(projects))
	for _, p := range projects {
		want = append(want, p.UUID)
	}
	relinked := false
	if !set.From(out.ProjectIDs).Equal(set.From(want)) {
		out.ProjectIDs = want
		relinked = true
	}

	changed := out.ApplyUpdate(spec.ToUpdate(), true)
	if !changed && !relinked {
		return nil, nil
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertFlavor(out); err != nil {
		return nil, err
	}
	return out, nil
}

// detachTxn removes the service link. The flavor is deleted outright when the
// detached service was its sole owner, otherwise it survives with the
// remaining links. Reports whether the flavor was deleted.
func (m *FlavorManager) detachTxn(txn *state.Txn, f *structs.Flavor, serviceID string) (bool, error) {
	services := set.From(f.ServiceIDs)
	services.Remove(serviceID)
	if services.Empty() {
		if err := txn.DeleteFlavor(f.UUID); err != nil {
			return false, err
		}
		return true, nil
	}

	out := f.Copy()
	out.ServiceIDs = services.Slice()
	if err := txn.UpsertFlavor(out); err != nil {
		return false, err
	}
	return false, nil
}

// Delete removes a flavor from the catalog regardless of how many services
// still offer it.
func (m *FlavorManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "flavor", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	f, err := txn.FlavorByUUID(uuidArg)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("flavor %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := txn.DeleteFlavor(uuidArg); err != nil {
		return err
	}

	txn.Commit()
	return nil
}
