package structs

import (
	"errors"

	"github.com/fedcloud/catalogd/helper/pointer"
	multierror "github.com/hashicorp/go-multierror"
)

// Flavor is a VM size template owned by one or more compute services.
// Shared-ownership child: deleting a service deletes the flavor only when no
// other service still references it.
type Flavor struct {
	// UUID is the vendor-assigned flavor identifier, supplied by the client.
	UUID        string
	Name        string
	Description string

	Disk      int64
	RAM       int64
	VCPUs     int64
	Swap      int64
	Ephemeral int64
	GPUs      int64

	IsPublic   bool
	Infiniband bool

	GPUModel     *string
	GPUVendor    *string
	LocalStorage *string

	// ServiceIDs holds the UUIDs of every compute service the flavor is
	// available on. ProjectIDs restricts a non-public flavor to the listed
	// projects.
	ServiceIDs []string
	ProjectIDs []string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a deep copy of the flavor.
func (f *Flavor) Copy() *Flavor {
	if f == nil {
		return nil
	}
	nf := *f
	nf.GPUModel = pointer.Copy(f.GPUModel)
	nf.GPUVendor = pointer.Copy(f.GPUVendor)
	nf.LocalStorage = pointer.Copy(f.LocalStorage)
	nf.ServiceIDs = copySliceString(f.ServiceIDs)
	nf.ProjectIDs = copySliceString(f.ProjectIDs)
	return &nf
}

// Validate returns an error aggregating every invalid field.
func (f *Flavor) Validate() error {
	var mErr multierror.Error
	if f.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing flavor UUID"))
	}
	if f.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing flavor name"))
	}
	if len(f.ServiceIDs) == 0 {
		mErr.Errors = append(mErr.Errors, errors.New("flavor is not linked to any service"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the flavor's scalar fields from u and reports whether
// anything changed. Service and project links are reconciled by the flavor
// manager.
func (f *Flavor) ApplyUpdate(u *FlavorUpdate, force bool) bool {
	changed := patchValue(&f.Name, u.Name, force)
	changed = patchValue(&f.Description, u.Description, force) || changed
	changed = patchValue(&f.Disk, u.Disk, force) || changed
	changed = patchValue(&f.RAM, u.RAM, force) || changed
	changed = patchValue(&f.VCPUs, u.VCPUs, force) || changed
	changed = patchValue(&f.Swap, u.Swap, force) || changed
	changed = patchValue(&f.Ephemeral, u.Ephemeral, force) || changed
	changed = patchValue(&f.GPUs, u.GPUs, force) || changed
	changed = patchValue(&f.IsPublic, u.IsPublic, force) || changed
	changed = patchValue(&f.Infiniband, u.Infiniband, force) || changed
	changed = patchPointer(&f.GPUModel, u.GPUModel, force) || changed
	changed = patchPointer(&f.GPUVendor, u.GPUVendor, force) || changed
	changed = patchPointer(&f.LocalStorage, u.LocalStorage, force) || changed
	return changed
}

// Stub returns the list projection of the flavor.
func (f *Flavor) Stub() *FlavorListStub {
	return &FlavorListStub{
		UUID:        f.UUID,
		Name:        f.Name,
		IsPublic:    f.IsPublic,
		VCPUs:       f.VCPUs,
		RAM:         f.RAM,
		Disk:        f.Disk,
		CreateIndex: f.CreateIndex,
		ModifyIndex: f.ModifyIndex,
	}
}

// FlavorListStub is the flavor projection returned by list endpoints.
type FlavorListStub struct {
	UUID        string
	Name        string
	IsPublic    bool
	VCPUs       int64
	RAM         int64
	Disk        int64
	CreateIndex uint64
	ModifyIndex uint64
}

// FlavorSpec is the create payload for a flavor, nested in compute service
// create and forced-update payloads.
type FlavorSpec struct {
	UUID        string
	Name        string
	Description string

	Disk      int64
	RAM       int64
	VCPUs     int64
	Swap      int64
	Ephemeral int64
	GPUs      int64

	IsPublic   bool
	Infiniband bool

	GPUModel     *string
	GPUVendor    *string
	LocalStorage *string

	// Projects restricts the flavor to the listed project UUIDs; entries not
	// in the provider's project pool are dropped.
	Projects []string
}

// ToUpdate converts the create payload into the update payload shape.
func (s *FlavorSpec) ToUpdate() *FlavorUpdate {
	return &FlavorUpdate{
		Name:         &s.Name,
		Description:  &s.Description,
		Disk:         &s.Disk,
		RAM:          &s.RAM,
		VCPUs:        &s.VCPUs,
		Swap:         &s.Swap,
		Ephemeral:    &s.Ephemeral,
		GPUs:         &s.GPUs,
		IsPublic:     &s.IsPublic,
		Infiniband:   &s.Infiniband,
		GPUModel:     s.GPUModel,
		GPUVendor:    s.GPUVendor,
		LocalStorage: s.LocalStorage,
	}
}

// FlavorUpdate is the patch payload for a flavor.
type FlavorUpdate struct {
	Name        *string
	Description *string

	Disk      *int64
	RAM       *int64
	VCPUs     *int64
	Swap      *int64
	Ephemeral *int64
	GPUs      *int64

	IsPublic   *bool
	Infiniband *bool

	GPUModel     *string
	GPUVendor    *string
	LocalStorage *string
}
