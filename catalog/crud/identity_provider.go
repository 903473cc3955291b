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

// IdentityProviderManager mutates identity providers, the roots of the
// authorization wing of the catalog.
type IdentityProviderManager struct {
	c      *Catalog
	logger hclog.Logger
}

// Create registers an identity provider together with the optional initial
// user groups nested in the payload.
func (m *IdentityProviderManager) Create(spec *structs.IdentityProviderSpec) (*structs.IdentityProvider, error) {
	defer metrics.MeasureSince([]string{"catalogd", "identity_provider", "create"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	existing, err := txn.IdentityProviderByEndpoint(spec.Endpoint)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("endpoint %q: %w", spec.Endpoint, structs.ErrDuplicateEndpoint)
	}

	idp := &structs.IdentityProvider{
		UUID:        uuid.Generate(),
		Endpoint:    spec.Endpoint,
		GroupClaim:  spec.GroupClaim,
		Description: spec.Description,
	}
	if err := idp.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertIdentityProvider(idp); err != nil {
		return nil, err
	}

	for _, gs := range spec.UserGroups {
		if _, err := m.c.UserGroups.createTxn(txn, gs, idp); err != nil {
			return nil, err
		}
	}

	txn.Commit()
	return idp, nil
}

// Update patches an identity provider. It returns nil without error when the
// payload changed nothing. On forced updates the submitted user group list is
// reconciled against the persisted set.
func (m *IdentityProviderManager) Update(uuidArg string, upd *structs.IdentityProviderUpdate, force bool) (*structs.IdentityProvider, error) {
	defer metrics.MeasureSince([]string{"catalogd", "identity_provider", "update"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	idp, err := txn.IdentityProviderByUUID(uuidArg)
	if err != nil {
		return nil, err
	}
	if idp == nil {
		return nil, fmt.Errorf("identity provider %q: %w", uuidArg, structs.ErrNotFound)
	}

	if upd.Endpoint != nil && *upd.Endpoint != idp.Endpoint {
		conflict, err := txn.IdentityProviderByEndpoint(*upd.Endpoint)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, fmt.Errorf("endpoint %q: %w", *upd.Endpoint, structs.ErrDuplicateEndpoint)
		}
	}

	out := idp.Copy()
	changed := out.ApplyUpdate(upd, force)

	edit := false
	if force {
		if edit, err = m.reconcileUserGroupsTxn(txn, out, upd.UserGroups); err != nil {
			return nil, err
		}
	}
	if !changed && !edit {
		return nil, nil
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	if err := txn.UpsertIdentityProvider(out); err != nil {
		return nil, err
	}

	txn.Commit()
	return out, nil
}

// reconcileUserGroupsTxn converges the persisted user group set onto the
// submitted list. Groups are matched by name.
func (m *IdentityProviderManager) reconcileUserGroupsTxn(txn *state.Txn, idp *structs.IdentityProvider, desired []*structs.UserGroupSpec) (bool, error) {
	existing, err := txn.UserGroupsByIdentityProvider(idp.UUID)
	if err != nil {
		return false, err
	}
	return reconcileChildren(desired, existing, childOps[*structs.UserGroupSpec, *structs.UserGroup]{
		specKey:   func(s *structs.UserGroupSpec) string { return s.Name },
		entityKey: func(g *structs.UserGroup) string { return g.Name },
		create: func(s *structs.UserGroupSpec) (bool, error) {
			_, err := m.c.UserGroups.createTxn(txn, s, idp)
			return true, err
		},
		update: func(g *structs.UserGroup, s *structs.UserGroupSpec) (bool, error) {
			out, err := m.c.UserGroups.updateTxn(txn, g, s.ToUpdate(), true)
			return out != nil, err
		},
		remove: func(g *structs.UserGroup) (bool, error) {
			return true, m.c.UserGroups.removeTxn(txn, g)
		},
	})
}

// Delete removes an identity provider and cascades over its user groups and
// their SLAs.
func (m *IdentityProviderManager) Delete(uuidArg string) error {
	defer metrics.MeasureSince([]string{"catalogd", "identity_provider", "delete"}, time.Now())

	txn := m.c.state.WriteTxn()
	defer txn.Abort()

	idp, err := txn.IdentityProviderByUUID(uuidArg)
	if err != nil {
		return err
	}
	if idp == nil {
		return fmt.Errorf("identity provider %q: %w", uuidArg, structs.ErrNotFound)
	}

	groups, err := txn.UserGroupsByIdentityProvider(idp.UUID)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if err := m.c.UserGroups.removeTxn(txn, g); err != nil {
			return err
		}
	}

	if err := txn.DeleteIdentityProvider(idp.UUID); err != nil {
		return err
	}

	txn.Commit()
	return nil
}
