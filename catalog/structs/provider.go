package structs

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// ProviderType is the closed set of resource-provider kinds the catalog
// tracks.
type ProviderType string

const (
	ProviderTypeOpenStack  ProviderType = "openstack"
	ProviderTypeKubernetes ProviderType = "kubernetes"
)

// Valid reports whether the provider type is a known member of the enum.
func (t ProviderType) Valid() bool {
	switch t {
	case ProviderTypeOpenStack, ProviderTypeKubernetes:
		return true
	default:
		return false
	}
}

// ProviderStatus describes the operational lifecycle of a provider.
type ProviderStatus string

const (
	ProviderStatusActive      ProviderStatus = "active"
	ProviderStatusMaintenance ProviderStatus = "maintenance"
	ProviderStatusDeprecated  ProviderStatus = "deprecated"
)

// Provider is a resource provider federated into the catalog. It owns regions
// and projects.
type Provider struct {
	UUID          string
	Name          string
	Type          ProviderType
	Status        ProviderStatus
	IsPublic      bool
	Description   string
	SupportEmails []string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a deep copy of the provider.
func (p *Provider) Copy() *Provider {
	if p == nil {
		return nil
	}
	np := *p
	np.SupportEmails = copySliceString(p.SupportEmails)
	return &np
}

// Canonicalize sets defaults for fields the caller may omit.
func (p *Provider) Canonicalize() {
	if p.Status == "" {
		p.Status = ProviderStatusActive
	}
}

// Validate returns an error aggregating every invalid field.
func (p *Provider) Validate() error {
	var mErr multierror.Error
	if p.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing provider UUID"))
	}
	if p.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing provider name"))
	}
	if !p.Type.Valid() {
		mErr.Errors = append(mErr.Errors, fmt.Errorf("invalid provider type %q", p.Type))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the provider's scalar fields from u and reports whether
// anything changed. When force is set, unsubmitted fields are reset to their
// zero values.
func (p *Provider) ApplyUpdate(u *ProviderUpdate, force bool) bool {
	changed := patchValue(&p.Name, u.Name, force)
	changed = patchValue(&p.Type, u.Type, force) || changed
	changed = patchValue(&p.Status, u.Status, force) || changed
	changed = patchValue(&p.IsPublic, u.IsPublic, force) || changed
	changed = patchValue(&p.Description, u.Description, force) || changed
	changed = patchSlice(&p.SupportEmails, u.SupportEmails, force) || changed
	return changed
}

// Stub returns the list projection of the provider.
func (p *Provider) Stub() *ProviderListStub {
	return &ProviderListStub{
		UUID:        p.UUID,
		Name:        p.Name,
		Type:        p.Type,
		Status:      p.Status,
		IsPublic:    p.IsPublic,
		CreateIndex: p.CreateIndex,
		ModifyIndex: p.ModifyIndex,
	}
}

// ProviderListStub is the provider projection returned by list endpoints.
type ProviderListStub struct {
	UUID        string
	Name        string
	Type        ProviderType
	Status      ProviderStatus
	IsPublic    bool
	CreateIndex uint64
	ModifyIndex uint64
}

// ProviderSpec is the create payload for a provider, optionally carrying the
// initial regions and projects.
type ProviderSpec struct {
	Name          string
	Type          ProviderType
	Status        ProviderStatus
	IsPublic      bool
	Description   string
	SupportEmails []string

	Regions  []*RegionSpec
	Projects []*ProjectSpec
}

// ProviderUpdate is the patch payload for a provider. Nil fields were not
// submitted.
type ProviderUpdate struct {
	Name          *string
	Type          *ProviderType
	Status        *ProviderStatus
	IsPublic      *bool
	Description   *string
	SupportEmails []string
}

// Region is a geographical partition of a provider. It owns services.
type Region struct {
	UUID        string
	Name        string
	Description string

	// ProviderID is the UUID of the owning provider.
	ProviderID string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a copy of the region.
func (r *Region) Copy() *Region {
	if r == nil {
		return nil
	}
	nr := *r
	return &nr
}

// Validate returns an error aggregating every invalid field.
func (r *Region) Validate() error {
	var mErr multierror.Error
	if r.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing region UUID"))
	}
	if r.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing region name"))
	}
	if r.ProviderID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("region is not linked to a provider"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the region's scalar fields from u and reports whether
// anything changed.
func (r *Region) ApplyUpdate(u *RegionUpdate, force bool) bool {
	changed := patchValue(&r.Name, u.Name, force)
	changed = patchValue(&r.Description, u.Description, force) || changed
	return changed
}

// RegionSpec is the create payload for a region. Provider names the owning
// provider UUID and is resolved by the REST layer; it is ignored when the
// region is nested in a provider create payload.
type RegionSpec struct {
	Name        string
	Description string
	Provider    string
}

// RegionUpdate is the patch payload for a region.
type RegionUpdate struct {
	Name        *string
	Description *string
}

// Project is a tenant of a provider. Quotas apply to (service, project)
// pairs; flavors, images and networks may be restricted to projects.
type Project struct {
	// UUID is the vendor-assigned project identifier and is supplied by the
	// client rather than generated.
	UUID        string
	Name        string
	Description string

	// ProviderID is the UUID of the owning provider.
	ProviderID string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a copy of the project.
func (p *Project) Copy() *Project {
	if p == nil {
		return nil
	}
	np := *p
	return &np
}

// Validate returns an error aggregating every invalid field.
func (p *Project) Validate() error {
	var mErr multierror.Error
	if p.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing project UUID"))
	}
	if p.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing project name"))
	}
	if p.ProviderID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("project is not linked to a provider"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the project's scalar fields from u and reports whether
// anything changed.
func (p *Project) ApplyUpdate(u *ProjectUpdate, force bool) bool {
	changed := patchValue(&p.Name, u.Name, force)
	changed = patchValue(&p.Description, u.Description, force) || changed
	return changed
}

// ProjectSpec is the create payload for a project. The UUID comes from the
// provider's own tenant registry, so the client must supply it.
type ProjectSpec struct {
	UUID        string
	Name        string
	Description string
	Provider    string
}

// ProjectUpdate is the patch payload for a project.
type ProjectUpdate struct {
	Name        *string
	Description *string
}
