package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var userGroupSortFields = map[string]func(*structs.UserGroup) string{
	"uuid": func(g *structs.UserGroup) string { return g.UUID },
	"name": func(g *structs.UserGroup) string { return g.Name },
}

// UserGroupByUUID returns the user group with the given UUID, or nil.
func (t *Txn) UserGroupByUUID(uuid string) (*structs.UserGroup, error) {
	return firstByIndex[*structs.UserGroup](t, TableUserGroups, indexID, uuid)
}

// UserGroups lists user groups with the query options applied.
func (t *Txn) UserGroups(opts structs.QueryOptions) ([]*structs.UserGroup, error) {
	return listTable(t, TableUserGroups, opts, userGroupSortFields)
}

// UserGroupsByIdentityProvider returns all user groups owned by the given
// identity provider.
func (t *Txn) UserGroupsByIdentityProvider(idpID string) ([]*structs.UserGroup, error) {
	return allByIndex[*structs.UserGroup](t, TableUserGroups, indexIdentityProvider, idpID)
}

// UpsertUserGroup inserts or replaces a user group, stamping the
// transaction's write index and preserving the create index of an existing
// entry.
func (t *Txn) UpsertUserGroup(g *structs.UserGroup) error {
	existing, err := t.UserGroupByUUID(g.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		g.CreateIndex = existing.CreateIndex
	} else {
		g.CreateIndex = t.Index
	}
	g.ModifyIndex = t.Index

	if err := t.Insert(TableUserGroups, g); err != nil {
		return fmt.Errorf("user group insert failed: %v", err)
	}
	return nil
}

// DeleteUserGroup removes the user group with the given UUID. Cascading to
// its SLAs is the user group manager's responsibility.
func (t *Txn) DeleteUserGroup(uuid string) error {
	existing, err := t.UserGroupByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("user group %q not found", uuid)
	}
	if err := t.Delete(TableUserGroups, existing); err != nil {
		return fmt.Errorf("user group delete failed: %v", err)
	}
	return nil
}
