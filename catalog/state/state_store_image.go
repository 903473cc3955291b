package state

import (
	"fmt"

	"github.com/fedcloud/catalogd/catalog/structs"
)

var imageSortFields = map[string]func(*structs.Image) string{
	"uuid": func(i *structs.Image) string { return i.UUID },
	"name": func(i *structs.Image) string { return i.Name },
}

// ImageByUUID returns the image with the given UUID, or nil.
func (t *Txn) ImageByUUID(uuid string) (*structs.Image, error) {
	return firstByIndex[*structs.Image](t, TableImages, indexID, uuid)
}

// Images lists images with the query options applied.
func (t *Txn) Images(opts structs.QueryOptions) ([]*structs.Image, error) {
	return listTable(t, TableImages, opts, imageSortFields)
}

// ImagesByService returns the images available on the given service.
func (t *Txn) ImagesByService(serviceID string) ([]*structs.Image, error) {
	return allByIndex[*structs.Image](t, TableImages, indexService, serviceID)
}

// ImagesByProject returns the images restricted to the given project.
func (t *Txn) ImagesByProject(projectID string) ([]*structs.Image, error) {
	return allByIndex[*structs.Image](t, TableImages, indexProject, projectID)
}

// UpsertImage inserts or replaces an image, stamping the transaction's write
// index and preserving the create index of an existing entry.
func (t *Txn) UpsertImage(i *structs.Image) error {
	existing, err := t.ImageByUUID(i.UUID)
	if err != nil {
		return err
	}
	if existing != nil {
		i.CreateIndex = existing.CreateIndex
	} else {
		i.CreateIndex = t.Index
	}
	i.ModifyIndex = t.Index

	if err := t.Insert(TableImages, i); err != nil {
		return fmt.Errorf("image insert failed: %v", err)
	}
	return nil
}

// DeleteImage removes the image with the given UUID.
func (t *Txn) DeleteImage(uuid string) error {
	existing, err := t.ImageByUUID(uuid)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("image %q not found", uuid)
	}
	if err := t.Delete(TableImages, existing); err != nil {
		return fmt.Errorf("image delete failed: %v", err)
	}
	return nil
}
