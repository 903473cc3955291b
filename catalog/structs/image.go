package structs

import (
	"errors"

	"github.com/fedcloud/catalogd/helper/pointer"
	multierror "github.com/hashicorp/go-multierror"
)

// Image is a bootable OS image owned by one or more compute services.
// Shared-ownership child with the same delete-or-disconnect semantics as
// Flavor.
type Image struct {
	// UUID is the vendor-assigned image identifier, supplied by the client.
	UUID        string
	Name        string
	Description string

	OSType       *string
	OSDistro     *string
	OSVersion    *string
	Architecture *string
	KernelID     *string

	CUDASupport bool
	GPUDriver   bool
	IsPublic    bool

	Tags []string

	// ServiceIDs holds the UUIDs of every compute service the image is
	// available on. ProjectIDs restricts a non-public image to the listed
	// projects.
	ServiceIDs []string
	ProjectIDs []string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a deep copy of the image.
func (i *Image) Copy() *Image {
	if i == nil {
		return nil
	}
	ni := *i
	ni.OSType = pointer.Copy(i.OSType)
	ni.OSDistro = pointer.Copy(i.OSDistro)
	ni.OSVersion = pointer.Copy(i.OSVersion)
	ni.Architecture = pointer.Copy(i.Architecture)
	ni.KernelID = pointer.Copy(i.KernelID)
	ni.Tags = copySliceString(i.Tags)
	ni.ServiceIDs = copySliceString(i.ServiceIDs)
	ni.ProjectIDs = copySliceString(i.ProjectIDs)
	return &ni
}

// Validate returns an error aggregating every invalid field.
func (i *Image) Validate() error {
	var mErr multierror.Error
	if i.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing image UUID"))
	}
	if i.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing image name"))
	}
	if len(i.ServiceIDs) == 0 {
		mErr.Errors = append(mErr.Errors, errors.New("image is not linked to any service"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the image's scalar fields from u and reports whether
// anything changed.
func (i *Image) ApplyUpdate(u *ImageUpdate, force bool) bool {
	changed := patchValue(&i.Name, u.Name, force)
	changed = patchValue(&i.Description, u.Description, force) || changed
	changed = patchPointer(&i.OSType, u.OSType, force) || changed
	changed = patchPointer(&i.OSDistro, u.OSDistro, force) || changed
	changed = patchPointer(&i.OSVersion, u.OSVersion, force) || changed
	changed = patchPointer(&i.Architecture, u.Architecture, force) || changed
	changed = patchPointer(&i.KernelID, u.KernelID, force) || changed
	changed = patchValue(&i.CUDASupport, u.CUDASupport, force) || changed
	changed = patchValue(&i.GPUDriver, u.GPUDriver, force) || changed
	changed = patchValue(&i.IsPublic, u.IsPublic, force) || changed
	changed = patchSlice(&i.Tags, u.Tags, force) || changed
	return changed
}

// Stub returns the list projection of the image.
func (i *Image) Stub() *ImageListStub {
	return &ImageListStub{
		UUID:        i.UUID,
		Name:        i.Name,
		IsPublic:    i.IsPublic,
		OSDistro:    i.OSDistro,
		OSVersion:   i.OSVersion,
		CreateIndex: i.CreateIndex,
		ModifyIndex: i.ModifyIndex,
	}
}

// ImageListStub is the image projection returned by list endpoints.
type ImageListStub struct {
	UUID        string
	Name        string
	IsPublic    bool
	OSDistro    *string
	OSVersion   *string
	CreateIndex uint64
	ModifyIndex uint64
}

// ImageSpec is the create payload for an image, nested in compute service
// create and forced-update payloads.
type ImageSpec struct {
	UUID        string
	Name        string
	Description string

	OSType       *string
	OSDistro     *string
	OSVersion    *string
	Architecture *string
	KernelID     *string

	CUDASupport bool
	GPUDriver   bool
	IsPublic    bool

	Tags []string

	// Projects restricts the image to the listed project UUIDs; entries not
	// in the provider's project pool are dropped.
	Projects []string
}

// ToUpdate converts the create payload into the update payload shape.
func (s *ImageSpec) ToUpdate() *ImageUpdate {
	return &ImageUpdate{
		Name:         &s.Name,
		Description:  &s.Description,
		OSType:       s.OSType,
		OSDistro:     s.OSDistro,
		OSVersion:    s.OSVersion,
		Architecture: s.Architecture,
		KernelID:     s.KernelID,
		CUDASupport:  &s.CUDASupport,
		GPUDriver:    &s.GPUDriver,
		IsPublic:     &s.IsPublic,
		Tags:         s.Tags,
	}
}

// ImageUpdate is the patch payload for an image.
type ImageUpdate struct {
	Name        *string
	Description *string

	OSType       *string
	OSDistro     *string
	OSVersion    *string
	Architecture *string
	KernelID     *string

	CUDASupport *bool
	GPUDriver   *bool
	IsPublic    *bool

	Tags []string
}
