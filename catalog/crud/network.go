package crud

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
)

// NetworkManager mutates networks. A network belongs to exactly one network
// service; a private network may additionally be reserved for one project of
// the same provider.
type NetworkManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers a network on a service. A project reference that does not
// resolve within the provider's pool is dropped with a warning; the network
// is still created.
func (m *NetworkManager) Create(serviceID string, spec *structs.NetworkSpec) (*structs.Network, error) {
	defer metrics.MeasureSince([]string{"catalogd", "network", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	svc, err := txn.ServiceByUUID(serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("service %q: %w", serviceID, structs.ErrNotFound)
	}
	if svc.Type != structs.ServiceTypeNetwork {
		return nil, fmt.Errorf("service type %q does not own networks", svc.Type)
	}

	pool, err := projectPool(txn, svc)
	if err != nil {
		return nil, err
	}

	n, err := m.createTxn(txn, spec, svc, pool)
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return n, nil
}

// createTxn builds and stores a network inside the caller's transaction.
func (m *NetworkManager) createTxn(txn *state.Txn, spec *structs.NetworkSpec, svc *structs.Service, pool []*structs.Project) (*structs.Network, error) {
	projectID := ""
	if spec.Project != "" {
		if p := projectByUUID(pool, spec.Project); p != nil {
			projectID = p.UUID
		} else {
			m.logger.Warn("dropping unresolved project reference on network",
				"network", spec.UUID, "project", spec.Project)
		}
	}

	n := &structs.Network{
		UUID:             spec.UUID,
		Name:             spec.Name,
		Description:      spec.Description,
		IsShared:         spec.IsShared,
		IsRouterExternal: spec.IsRouterExternal,
		IsDefault:        spec.IsDefault,
		MTU:              spec.MTU,
		ProxyHost:        spec.ProxyHost,
		ProxyUser:        spec.ProxyUser,
		Tags:             spec.Tags,
		ServiceID:        svc.UUID,
		ProjectID:        projectID,
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertNetwork(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Update patches a network. It returns nil without error when the payload
// changed nothing. On forced updates the project link follows the submitted
// reference: empty clears it, an unknown UUID fails the update.
func (m *NetworkManager) Update(uuidArg string, upd *structs.NetworkUpdate, force bool) (*structs.Network, error) {
	defer metrics.MeasureSince([]string{"catalogd", "network", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	n, err := txn.NetworkByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("network %q: %w", uuidArg, structs.ErrNotFound)
	}

	var pool []*structs.Project
	if force && upd.Project != nil {
		svc, err := txn.ServiceByUUID(n.ServiceID)
		if err != nil {
			return nil, err
		}
		if pool, err = projectPool(txn, svc); err != nil {
			return nil, err
		}
	}

	out, err := m.updateTxn(txn, n, upd, pool, force)
	if err != nil || out == nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// updateTxn applies the patch inside the caller's transaction, returning nil
// when nothing changed.
func (m *NetworkManager) updateTxn(txn *state.Txn, n *structs.Network, upd *structs.NetworkUpdate, pool []*structs.Project, force bool) (*structs.Network, error) {
	out := n.Copy()

	relinked := false
	if force && upd.Project != nil && *upd.Project != out.ProjectID {
		if *upd.Project == "" {
			out.ProjectID = ""
		} else {
			repl := projectByUUID(pool, *upd.Project)
			if repl == nil {
				return nil, fmt.Errorf("cannot link network %q to project %q: %w",
					n.UUID, *upd.Project, structs.ErrUnknownProject)
			}
			out.ProjectID = repl.UUID
		}
		relinked = true
	}

	changed := out.ApplyUpdate(upd, force)
	if !changed && !relinked {
		return nil, nil
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertNetwork(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a network.
func (m *NetworkManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "network", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	n, err := txn.NetworkByUUID(uuidArg)
	if err != nil {
		return err
	}
	if n == nil {
		return fmt.Errorf("network %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := txn.DeleteNetwork(uuidArg); err != nil {
		return err
	}

	txn.Commit()
	return nil
}
