package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var quotaSortFields = map[string]func(*structs.Quota) string{
	"uuid": func(q *structs.Quota) string { return q.UUID },
	"type": func(q *structs.Quota) string { return string(q.Type) },
}

// QuotaByUUID returns the quota with the given UUID, or nil.
func (t *Txn) QuotaByUUID(uuid string) (*structs.Quota, error) {
	return firstByIndex[*structs.Quota](t, TableQuotas, indexID, uuid)
}

// Quotas lists quotas with the query options applied.
func (t *Txn) Quotas(opts structs.QueryOptions) ([]*structs.Quota, error) {
	return listTable(t, TableQuotas, opts, quotaSortFields)
}

// QuotasByService returns the currently persisted quotas of the given
// service. This is the snapshot the service manager reconciles against.
func (t *Txn) QuotasByService(serviceID string) ([]*structs.Quota, error) {
	return allByIndex[*structs.Quota](t, TableQuotas, indexService, serviceID)
}

// QuotasByProject returns all quotas applying to the given project.
func (t *Txn) QuotasByProject(projectID string) ([]*structs.Quota, error) {
	return allByIndex[*structs.Quota](t, TableQuotas, indexProject, projectID)
}

// UpsertQuota inserts or replaces a quota, stamping the transaction's write
// index and preserving the create index of an existing entry.
func (t *Txn) UpsertQuota(q *structs.Quota) error {
	existing, err := t.QuotaByUUID(q.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		q.CreateIndex = existing.CreateIndex
	} else {
		q.CreateIndex = t.Index
	}
	q.ModifyIndex = t.Index

	if err := t.Insert(TableQuotas, q); err != nil {
		return fmt.Errorf("quota insert failed: %v", err)
	}
	return nil
}

// DeleteQuota removes the quota with the given UUID.
func (t *Txn) DeleteQuota(uuid string) error {
	existing, err := t.QuotaByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("quota %q not found", uuid)
	}
	if err := t.Delete(TableQuotas, existing); err != nil {
		return fmt.Errorf("quota delete failed: %v", err)
	}
	return nil
}
