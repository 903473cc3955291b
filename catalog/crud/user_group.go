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

// UserGroupManager mutates user groups and orchestrates their SLAs. A forced
// update carries the full desired SLA list; the manager reconciles it against
// the persisted set, matching agreements by document UUID.
type UserGroupManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers a user group under an identity provider together with the
// submitted SLAs.
func (m *UserGroupManager) Create(idpID string, spec *structs.UserGroupSpec) (*structs.UserGroup, error) {
	defer metrics.MeasureSince([]string{"catalogd", "user_group", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	idp, err := txn.IdentityProviderByUUID(idpID)
	if err != nil {
		return nil, err
	}
	if idp == nil {
		return nil, fmt.Errorf("identity provider %q: %w", idpID, structs.ErrNotFound)
	}

	g, err := m.createTxn(txn, spec, idp)
	if err != nil {
		return nil, err
	}

	txn.Commit()
	return g, nil
}

// createTxn builds and stores a user group inside the caller's transaction.
// Group names are unique within their identity provider.
func (m *UserGroupManager) createTxn(txn *state.Txn, spec *structs.UserGroupSpec, idp *structs.IdentityProvider) (*structs.UserGroup, error) {
	siblings, err := txn.UserGroupsByIdentityProvider(idp.UUID)
	if err != nil {
		return nil, err
	}
	for _, e := range siblings {
		if e.Name == spec.Name {
			return nil, fmt.Errorf("user group %q already exists on identity provider %q",
				spec.Name, idp.UUID)
		}
	}

	g := &structs.UserGroup{
		UUID:               uuid.Generate(),
		Name:               spec.Name,
		Description:        spec.Description,
		IdentityProviderID: idp.UUID,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertUserGroup(g); err != nil {
		return nil, err
	}

	for _, ss := range spec.SLAs {
		if _, err := m.c.SLAs.createTxn(txn, ss, g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Update patches a user group. It returns nil without error when the payload
// changed nothing. On forced updates the submitted SLA list is reconciled
// against the persisted set.
func (m *UserGroupManager) Update(uuidArg string, upd *structs.UserGroupUpdate, force bool) (*structs.UserGroup, error) {
	defer metrics.MeasureSince([]string{"catalogd", "user_group", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	g, err := txn.UserGroupByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("user group %q: %w", uuidArg, structs.ErrNotFound)
	}

	out, err := m.updateTxn(txn, g, upd, force)
	if err != nil || out == nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// updateTxn applies the patch inside the caller's transaction, returning nil
// when nothing changed.
func (m *UserGroupManager) updateTxn(txn *state.Txn, g *structs.UserGroup, upd *structs.UserGroupUpdate, force bool) (*structs.UserGroup, error) {
	out := g.Copy()
	changed := out.ApplyUpdate(upd, force)

	// A renamed group must not collide with a sibling.
	if out.Name != g.Name {
		siblings, err := txn.UserGroupsByIdentityProvider(out.IdentityProviderID)
		if err != nil {
			return nil, err
		}
		for _, e := range siblings {
			if e.UUID != out.UUID && e.Name == out.Name {
				return nil, fmt.Errorf("user group %q already exists on identity provider %q",
					out.Name, out.IdentityProviderID)
			}
		}
	}

	edit := false
	if force {
		var err error
		if edit, err = m.reconcileSLAsTxn(txn, out, upd.SLAs); err != nil {
			return nil, err
		}
	}
	if !changed && !edit {
		return nil, nil
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertUserGroup(out); err != nil {
		return nil, err
	}
	return out, nil
}

// reconcileSLAsTxn converges the persisted SLA set onto the submitted list.
// Agreements are matched by document UUID: a resubmitted document is updated
// in place, a new document is created, a document that is no longer submitted
// is revoked.
func (m *UserGroupManager) reconcileSLAsTxn(txn *state.Txn, g *structs.UserGroup, desired []*structs.SLASpec) (bool, error) {
	existing, err := txn.SLAsByUserGroup(g.UUID)
	if err != nil {
		return false, err
	}
	return reconcileChildren(desired, existing, childOps[*structs.SLASpec, *structs.SLA]{
		specKey:   func(s *structs.SLASpec) string { return s.DocUUID },
		entityKey: func(s *structs.SLA) string { return s.DocUUID },
		create: func(s *structs.SLASpec) (bool, error) {
			_, err := m.c.SLAs.createTxn(txn, s, g)
			return err == nil, err
		},
		update: func(e *structs.SLA, s *structs.SLASpec) (bool, error) {
			out, err := m.c.SLAs.updateTxn(txn, e, s.ToUpdate(), true)
			return out != nil, err
		},
		remove: func(e *structs.SLA) (bool, error) {
			return true, txn.DeleteSLA(e.UUID)
		},
	})
}

// Delete removes a user group and its SLAs.
func (m *UserGroupManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "user_group", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	g, err := txn.UserGroupByUUID(uuidArg)
	if err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("user group %q: %w", uuidArg, structs.ErrNotFound)
	}
	if err := m.removeTxn(txn, g); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

// removeTxn cascades the deletion inside the caller's transaction.
func (m *UserGroupManager) removeTxn(txn *state.Txn, g *structs.UserGroup) error {
	slas, err := txn.SLAsByUserGroup(g.UUID)
	if err != nil {
		return err
	}
	for _, s := range slas {
		if err := txn.DeleteSLA(s.UUID); err != nil {
			return err
		}
	}
	return txn.DeleteUserGroup(g.UUID)
}
