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

// ServiceManager mutates services and orchestrates their child collections.
// A forced update carries the full desired state of every child collection
// the service type owns; the manager reconciles each collection against the
// persisted set with the minimal create/update/delete operations.
type ServiceManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers a service in a region together with the submitted child
// collections. Child collections that do not match the service type are
// ignored. Quota entries whose project reference does not resolve within the
// provider's pool are skipped with a warning rather than failing the create.
func (m *ServiceManager) Create(spec *structs.ServiceSpec) (*structs.Service, error) {
	defer metrics.MeasureSince([]string{"catalogd", "service", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	region, err := txn.RegionByUUID(spec.Region)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("region %q: %w", spec.Region, structs.ErrNotFound)
	}

	dup, err := txn.ServiceByEndpoint(spec.Endpoint)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, fmt.Errorf("endpoint %q: %w", spec.Endpoint, structs.ErrDuplicateEndpoint)
	}

	svc := &structs.Service{
		UUID:        uuid.Generate(),
		Type:        spec.Type,
		Name:        spec.Name,
		Description: spec.Description,
		Endpoint:    spec.Endpoint,
		RegionID:    region.UUID,
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertService(svc); err != nil {
		return nil, err
	}

	pool, err := txn.ProjectsByProvider(region.ProviderID)
	if err != nil {
		return nil, err
	}
	if err := m.createChildrenTxn(txn, svc, spec, pool); err != nil {
		return nil, err
	}

	txn.Commit()
	return svc, nil
}

// createChildrenTxn stores the child collections of a freshly created
// service.
func (m *ServiceManager) createChildrenTxn(txn *state.Txn, svc *structs.Service, spec *structs.ServiceSpec, pool []*structs.Project) error {
	if svc.Type.HasQuotas() {
		for _, qs := range spec.Quotas {
			project := projectByUUID(pool, qs.Project)
			if project == nil {
				m.logger.Warn("skipping quota with unresolved project reference",
					"service", svc.UUID, "project", qs.Project)
				continue
			}
			if _, err := m.c.Quotas.createTxn(txn, qs, svc, project); err != nil {
				return err
			}
		}
	}

	if svc.Type == structs.ServiceTypeCompute {
		for _, fs := range spec.Flavors {
			if _, err := m.c.Flavors.createTxn(txn, fs, svc, filterProjects(pool, fs.Projects)); err != nil {
				return err
			}
		}
		for _, is := range spec.Images {
			if _, err := m.c.Images.createTxn(txn, is, svc, filterProjects(pool, is.Projects)); err != nil {
				return err
			}
		}
	}

	if svc.Type == structs.ServiceTypeNetwork {
		for _, ns := range spec.Networks {
			if _, err := m.c.Networks.createTxn(txn, ns, svc, pool); err != nil {
				return err
			}
		}
	}

	return nil
}

// Update patches a service. It returns nil without error when the payload
// changed nothing, neither a scalar attribute nor, on forced updates, any
// child collection. A forced update treats the submitted child lists as the
// full desired state and reconciles the persisted sets against them.
func (m *ServiceManager) Update(uuidArg string, upd *structs.ServiceUpdate, force bool) (*structs.Service, error) {
	defer metrics.MeasureSince([]string{"catalogd", "service", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	svc, err := txn.ServiceByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("service %q: %w", uuidArg, structs.ErrNotFound)
	}

	if upd.Endpoint != nil && *upd.Endpoint != svc.Endpoint {
		dup, err := txn.ServiceByEndpoint(*upd.Endpoint)
		if err != nil {
			return nil, err
		}
		if dup != nil {
			return nil, fmt.Errorf("endpoint %q: %w", *upd.Endpoint, structs.ErrDuplicateEndpoint)
		}
	}

	out := svc.Copy()
	changed := out.ApplyUpdate(upd, force)

	edit := false
	if force {
		pool, err := projectPool(txn, svc)
		if err != nil {
			return nil, err
		}
		if edit, err = m.reconcileChildrenTxn(txn, svc, upd, pool); err != nil {
			return nil, err
		}
	}

	if !changed && !edit {
		return nil, nil
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertService(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// reconcileChildrenTxn converges every child collection the service type owns
// onto the resubmitted desired state and reports whether anything changed.
//
// Quotas are keyed by their (per_user, project) pair, so a resubmission can
// never move a quota between projects; it deletes the old pair and creates
// the new one. Flavors, images and networks are keyed by their vendor UUID.
func (m *ServiceManager) reconcileChildrenTxn(txn *state.Txn, svc *structs.Service, upd *structs.ServiceUpdate, pool []*structs.Project) (bool, error) {
	edit := false

	if svc.Type.HasQuotas() {
		quotas, err := txn.QuotasByService(svc.UUID)
		if err != nil {
			return false, err
		}
		changed, err := reconcileChildren(upd.Quotas, quotas, childOps[*structs.QuotaSpec, *structs.Quota]{
			specKey:   func(s *structs.QuotaSpec) string { return quotaKey(s.PerUser, s.Project) },
			entityKey: func(q *structs.Quota) string { return quotaKey(q.PerUser, q.ProjectID) },
			create: func(s *structs.QuotaSpec) (bool, error) {
				project := projectByUUID(pool, s.Project)
				if project == nil {
					m.logger.Warn("skipping quota with unresolved project reference",
						"service", svc.UUID, "project", s.Project)
					return false, nil
				}
				_, err := m.c.Quotas.createTxn(txn, s, svc, project)
				return err == nil, err
			},
			update: func(q *structs.Quota, s *structs.QuotaSpec) (bool, error) {
				out, err := m.c.Quotas.updateTxn(txn, q, s.ToUpdate(), pool, true)
				return out != nil, err
			},
			remove: func(q *structs.Quota) (bool, error) {
				return true, txn.DeleteQuota(q.UUID)
			},
		})
		if err != nil {
			return false, err
		}
		edit = edit || changed
	}

	if svc.Type == structs.ServiceTypeCompute {
		flavors, err := txn.FlavorsByService(svc.UUID)
		if err != nil {
			return false, err
		}
		changed, err := reconcileChildren(upd.Flavors, flavors, childOps[*structs.FlavorSpec, *structs.Flavor]{
			specKey:   func(s *structs.FlavorSpec) string { return s.UUID },
			entityKey: func(f *structs.Flavor) string { return f.UUID },
			create: func(s *structs.FlavorSpec) (bool, error) {
				_, err := m.c.Flavors.createTxn(txn, s, svc, filterProjects(pool, s.Projects))
				return err == nil, err
			},
			update: func(f *structs.Flavor, s *structs.FlavorSpec) (bool, error) {
				out, err := m.c.Flavors.updateTxn(txn, f, s, filterProjects(pool, s.Projects))
				return out != nil, err
			},
			remove: func(f *structs.Flavor) (bool, error) {
				_, err := m.c.Flavors.detachTxn(txn, f, svc.UUID)
				return true, err
			},
		})
		if err != nil {
			return false, err
		}
		edit = edit || changed

		images, err := txn.ImagesByService(svc.UUID)
		if err != nil {
			return false, err
		}
		changed, err = reconcileChildren(upd.Images, images, childOps[*structs.ImageSpec, *structs.Image]{
			specKey:   func(s *structs.ImageSpec) string { return s.UUID },
			entityKey: func(i *structs.Image) string { return i.UUID },
			create: func(s *structs.ImageSpec) (bool, error) {
				_, err := m.c.Images.createTxn(txn, s, svc, filterProjects(pool, s.Projects))
				return err == nil, err
			},
			update: func(i *structs.Image, s *structs.ImageSpec) (bool, error) {
				out, err := m.c.Images.updateTxn(txn, i, s, filterProjects(pool, s.Projects))
				return out != nil, err
			},
			remove: func(i *structs.Image) (bool, error) {
				_, err := m.c.Images.detachTxn(txn, i, svc.UUID)
				return true, err
			},
		})
		if err != nil {
			return false, err
		}
		edit = edit || changed
	}

	if svc.Type == structs.ServiceTypeNetwork {
		networks, err := txn.NetworksByService(svc.UUID)
		if err != nil {
			return false, err
		}
		changed, err := reconcileChildren(upd.Networks, networks, childOps[*structs.NetworkSpec, *structs.Network]{
			specKey:   func(s *structs.NetworkSpec) string { return s.UUID },
			entityKey: func(n *structs.Network) string { return n.UUID },
			create: func(s *structs.NetworkSpec) (bool, error) {
				_, err := m.c.Networks.createTxn(txn, s, svc, pool)
				return err == nil, err
			},
			update: func(n *structs.Network, s *structs.NetworkSpec) (bool, error) {
				out, err := m.c.Networks.updateTxn(txn, n, s.ToUpdate(), pool, true)
				return out != nil, err
			},
			remove: func(n *structs.Network) (bool, error) {
				return true, txn.DeleteNetwork(n.UUID)
			},
		})
		if err != nil {
			return false, err
		}
		edit = edit || changed
	}

	return edit, nil
}

// Delete removes a service and cascades over its children: quotas and
// networks are deleted outright, flavors and images are detached and deleted
// only when this service was their sole owner.
func (m *ServiceManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "service", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	svc, err := txn.ServiceByUUID(uuidArg)
	if err != nil {
		return err
	}
	if svc == nil {
		return fmt.Errorf("service %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := m.removeTxn(txn, svc); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// removeTxn cascades the deletion inside the caller's transaction.
func (m *ServiceManager) removeTxn(txn *state.Txn, svc *structs.Service) error {
	quotas, err := txn.QuotasByService(svc.UUID)
	if err != nil {
		return err
	}
	for _, q := range quotas {
		if err := txn.DeleteQuota(q.UUID); err != nil {
			return err
		}
	}

	flavors, err := txn.FlavorsByService(svc.UUID)
	if err != nil {
		return err
	}
	for _, f := range flavors {
		if _, err := m.c.Flavors.detachTxn(txn, f, svc.UUID); err != nil {
			return err
		}
	}

	images, err := txn.ImagesByService(svc.UUID)
	if err != nil {
		return err
	}
	for _, i := range images {
		if _, err := m.c.Images.detachTxn(txn, i, svc.UUID); err != nil {
			return err
		}
	}

	networks, err := txn.NetworksByService(svc.UUID)
	if err != nil {
		return err
	}
	for _, n := range networks {
		if err := txn.DeleteNetwork(n.UUID); err != nil {
			return err
		}
	}

	return txn.DeleteService(svc.UUID)
}
