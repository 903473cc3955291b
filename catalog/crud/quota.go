package crud

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/helper/pointer"
	"github.com/fedcloud/catalogd/helper/uuid"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

// QuotaManager mutates quotas. A quota links exactly one service to exactly
// one project; moving it to another project is only allowed on forced updates
// and only within the owning provider's project pool.
type QuotaManager struct {
	c      *Catalog
	logger hclog.Logger
}

// projectPool returns the project pool of the provider owning the given
// service: the set submitted relationship references resolve against.
func projectPool(txn *state.Txn, svc *structs.Service) ([]*structs.Project, error) {
	region, err := txn.RegionByUUID(svc.RegionID)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, fmt.Errorf("region %q: %w", svc.RegionID, structs.ErrNotFound)
	}
	return txn.ProjectsByProvider(region.ProviderID)
}

// Create registers a quota on a service. Unlike the nested create path, a
// project reference that does not resolve within the provider's pool is an
// error here.
func (m *QuotaManager) Create(serviceID string, spec *structs.QuotaSpec) (*structs.Quota, error) {
	defer metrics.MeasureSince([]string{"catalogd", "quota", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	svc, err := txn.ServiceByUUID(serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("service %q: %w", serviceID, structs.ErrNotFound)
	}

	pool, err := projectPool(txn, svc)
	if err != nil {
		return nil, err
	}
	project := projectByUUID(pool, spec.Project)
	if project == nil {
		return nil, fmt.Errorf("project %q: %w", spec.Project, structs.ErrUnknownProject)
	}

	q, err := m.createTxn(txn, spec, svc, project)
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return q, nil
}

// createTxn builds and stores a quota inside the caller's transaction. The
// (per_user, project) pair must be free on the service.
func (m *QuotaManager) createTxn(txn *state.Txn, spec *structs.QuotaSpec, svc *structs.Service, project *structs.Project) (*structs.Quota, error) {
	qt, ok := structs.QuotaTypeForService(svc.Type)
	if !ok {
		return nil, fmt.Errorf("service type %q does not own quotas", svc.Type)
	}

	existing, err := txn.QuotasByService(svc.UUID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.PerUser == spec.PerUser && e.ProjectID == project.UUID {
			return nil, fmt.Errorf("quota (per_user=%t) for project %q already exists on service %q",
				spec.PerUser, project.UUID, svc.UUID)
		}
	}

	q := &structs.Quota{
		UUID:               uuid.Generate(),
		Type:               qt,
		Description:        spec.Description,
		PerUser:            spec.PerUser,
		Usage:              spec.Usage,
		Gigabytes:          pointer.Copy(spec.Gigabytes),
		PerVolumeGigabytes: pointer.Copy(spec.PerVolumeGigabytes),
		Volumes:            pointer.Copy(spec.Volumes),
		Cores:              pointer.Copy(spec.Cores),
		Instances:          pointer.Copy(spec.Instances),
		RAM:                pointer.Copy(spec.RAM),
		Networks:           pointer.Copy(spec.Networks),
		Ports:              pointer.Copy(spec.Ports),
		PublicIPs:          pointer.Copy(spec.PublicIPs),
		SecurityGroups:     pointer.Copy(spec.SecurityGroups),
		SecurityGroupRules: pointer.Copy(spec.SecurityGroupRules),
		ServiceID:          svc.UUID,
		ProjectID:          project.UUID,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertQuota(q); err != nil {
		return nil, err
	}
	return q, nil
}

// Update patches a quota. It returns nil without error when the payload
// changed nothing. A forced update may move the quota to another project of
// the same provider; a reference outside the pool fails the whole update.
func (m *QuotaManager) Update(uuidArg string, upd *structs.QuotaUpdate, force bool) (*structs.Quota, error) {
	defer metrics.MeasureSince([]string{"catalogd", "quota", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	q, err := txn.QuotaByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("quota %q: %w", uuidArg, structs.ErrNotFound)
	}

	var pool []*structs.Project
	if force && upd.Project != nil {
		svc, err := txn.ServiceByUUID(q.ServiceID)
		if err != nil {
			return nil, err
		}
		if pool, err = projectPool(txn, svc); err != nil {
			return nil, err
		}
	}

	out, err := m.updateTxn(txn, q, upd, pool, force)
	if err != nil || out == nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// updateTxn applies the patch inside the caller's transaction, returning nil
// when nothing changed.
func (m *QuotaManager) updateTxn(txn *state.Txn, q *structs.Quota, upd *structs.QuotaUpdate, pool []*structs.Project, force bool) (*structs.Quota, error) {
	out := q.Copy()

	moved := false
	if force && upd.Project != nil && *upd.Project != out.ProjectID {
		repl := projectByUUID(pool, *upd.Project)
		if repl == nil {
			return nil, fmt.Errorf("cannot move quota %q to project %q: %w",
				q.UUID, *upd.Project, structs.ErrUnknownProject)
		}
		out.ProjectID = repl.UUID
		moved = true
	}

	changed := out.ApplyUpdate(upd, force)
	if !changed && !moved {
		return nil, nil
	}

	// A patched PerUser flag or a project move lands the quota in a new
	// (per_user, project) slot; that slot must be free on the service.
	if out.PerUser != q.PerUser || out.ProjectID != q.ProjectID {
		siblings, err := txn.QuotasByService(out.ServiceID)
		if err != nil {
			return nil, err
		}
		for _, e := range siblings {
			if e.UUID != out.UUID && e.PerUser == out.PerUser && e.ProjectID == out.ProjectID {
				return nil, fmt.Errorf("quota (per_user=%t) for project %q already exists on service %q",
					out.PerUser, out.ProjectID, out.ServiceID)
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertQuota(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a quota.
func (m *QuotaManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "quota", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	q, err := txn.QuotaByUUID(uuidArg)
	if err != nil {
		return err
	}
	if q == nil {
		return fmt.Errorf("quota %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := txn.DeleteQuota(uuidArg); err != nil {
		return err
	}

	txn.Commit()
	return nil
}
