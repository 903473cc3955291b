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

// ImageManager mutates images. Images follow the same shared-ownership rules
// as flavors.
type ImageManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create attaches an image to a compute service, creating it if the UUID is
// not yet known to the catalog. Project references outside the provider's
// pool are dropped.
func (m *ImageManager) Create(serviceID string, spec *structs.ImageSpec) (*structs.Image, error) {
	defer metrics.MeasureSince([]string{"catalogd", "image", "create"}, time.Now())

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
		return nil, fmt.Errorf("service type %q does not own images", svc.Type)
	}

	pool, err := projectPool(txn, svc)
	if err != nil {
		return nil, err
	}

	i, err := m.createTxn(txn, spec, svc, filterProjects(pool, spec.Projects))
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return i, nil
}

// createTxn connects an existing image to the service or creates a fresh one
// from the spec.
func (m *ImageManager) createTxn(txn *state.Txn, spec *structs.ImageSpec, svc *structs.Service, projects []*structs.Project) (*structs.Image, error) {
	existing, err := txn.ImageByUUID(spec.UUID)
	if err != nil {
		return nil, err
	}

	var i *structs.Image
	if existing != nil {
		i = existing.Copy()
	} else {
		i = &structs.Image{
			UUID:         spec.UUID,
			Name:         spec.Name,
			Description:  spec.Description,
			OSType:       spec.OSType,
			OSDistro:     spec.OSDistro,
			OSVersion:    spec.OSVersion,
			Architecture: spec.Architecture,
			KernelID:     spec.KernelID,
			CUDASupport:  spec.CUDASupport,
			GPUDriver:    spec.GPUDriver,
			IsPublic:     spec.IsPublic,
			Tags:         spec.Tags,
		}
	}

	services := set.From(i.ServiceIDs)
	services.Insert(svc.UUID)
	i.ServiceIDs = services.Slice()

	links := set.From(i.ProjectIDs)
	for _, p := range projects {
		links.Insert(p.UUID)
	}
	i.ProjectIDs = links.Slice()

	if err := i.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertImage(i); err != nil {
		return nil, err
	}
	return i, nil
}

// Update patches an image's scalar attributes. Returns nil without error when
// nothing changed.
func (m *ImageManager) Update(uuidArg string, upd *structs.ImageUpdate, force bool) (*structs.Image, error) {
	defer metrics.MeasureSince([]string{"catalogd", "image", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	i, err := txn.ImageByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, fmt.Errorf("image %q: %w", uuidArg, structs.ErrNotFound)
	}

	out := i.Copy()
	if !out.ApplyUpdate(upd, force) {
		return nil, nil
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertImage(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// updateTxn applies a full resubmitted spec inside the caller's transaction,
// reconciling the project links to the filtered subset. Returns nil when
// nothing changed.
func (m *ImageManager) updateTxn(txn *state.Txn, i *structs.Image, spec *structs.ImageSpec, projects []*structs.Project) (*structs.Image, error) {
	out := i.Copy()

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
	if err := txn.UpsertImage(out); err != nil {
		return nil, err
	}
	return out, nil
}

// detachTxn removes the service link, deleting the image when the detached
// service was its sole owner. Reports whether the image was deleted.
func (m *ImageManager) detachTxn(txn *state.Txn, i *structs.Image, serviceID string) (bool, error) {
	services := set.From(i.ServiceIDs)
	services.Remove(serviceID)
	if services.Empty() {
		if err := txn.DeleteImage(i.UUID); err != nil {
			return false, err
		}
		return true, nil
	}

	out := i.Copy()
	out.ServiceIDs = services.Slice()
	if err := txn.UpsertImage(out); err != nil {
		return false, err
	}
	return false, nil
}

// Delete removes an image from the catalog regardless of how many services
// still offer it.
func (m *ImageManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "image", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	i, err := txn.ImageByUUID(uuidArg)
	if err != nil {
		return err
	}
	if i == nil {
		return fmt.Errorf("image %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := txn.DeleteImage(uuidArg); err != nil {
		return err
	}

	txn.Commit()
	return nil
}
