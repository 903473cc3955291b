package structs

import (
	"errors"
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
)

// ServiceType is the closed set of service categories. The category decides
// which child collections a service owns: block-storage, compute and network
// services own quotas; compute services additionally own flavors and images;
// network services additionally own networks; identity services own nothing.
type ServiceType string

const (
	ServiceTypeBlockStorage ServiceType = "block-storage"
	ServiceTypeCompute      ServiceType = "compute"
	ServiceTypeIdentity     ServiceType = "identity"
	ServiceTypeNetwork      ServiceType = "network"
)

// Valid reports whether the service type is a known member of the enum.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeBlockStorage, ServiceTypeCompute, ServiceTypeIdentity, ServiceTypeNetwork:
		return true
	default:
		return false
	}
}

// HasQuotas reports whether services of this type own quotas.
func (t ServiceType) HasQuotas() bool {
	return t != ServiceTypeIdentity
}

// Known vendor service identifiers. Enum membership is enforced at the
// schema boundary, not here; the constants exist for callers and fixtures.
const (
	ServiceNameOpenStackCinder   = "org.openstack.cinder"
	ServiceNameOpenStackNova     = "org.openstack.nova"
	ServiceNameOpenStackKeystone = "org.openstack.keystone"
	ServiceNameOpenStackNeutron  = "org.openstack.neutron"
)

// Service is an endpoint exposing a cloud capability within a region.
type Service struct {
	UUID        string
	Type        ServiceType
	Name        string
	Description string

	// Endpoint is the URL of the IaaS service; it is unique across the
	// catalog.
	Endpoint string

	// RegionID is the UUID of the owning region.
	RegionID string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a copy of the service.
func (s *Service) Copy() *Service {
	if s == nil {
		return nil
	}
	ns := *s
	return &ns
}

// Validate returns an error aggregating every invalid field.
func (s *Service) Validate() error {
	var mErr multierror.Error
	if s.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing service UUID"))
	}
	if !s.Type.Valid() {
		mErr.Errors = append(mErr.Errors, fmt.Errorf("invalid service type %q", s.Type))
	}
	if s.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing service name"))
	}
	if s.Endpoint == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing service endpoint"))
	}
	if s.RegionID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("service is not linked to a region"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the service's scalar fields from u and reports whether
// anything changed. Child collections are never touched here; the service
// manager reconciles them separately when force is set.
func (s *Service) ApplyUpdate(u *ServiceUpdate, force bool) bool {
	changed := patchValue(&s.Name, u.Name, force)
	changed = patchValue(&s.Description, u.Description, force) || changed
	changed = patchValue(&s.Endpoint, u.Endpoint, force) || changed
	return changed
}

// Stub returns the list projection of the service.
func (s *Service) Stub() *ServiceListStub {
	return &ServiceListStub{
		UUID:        s.UUID,
		Type:        s.Type,
		Name:        s.Name,
		Endpoint:    s.Endpoint,
		RegionID:    s.RegionID,
		CreateIndex: s.CreateIndex,
		ModifyIndex: s.ModifyIndex,
	}
}

// ServiceListStub is the service projection returned by list endpoints.
type ServiceListStub struct {
	UUID        string
	Type        ServiceType
	Name        string
	Endpoint    string
	RegionID    string
	CreateIndex uint64
	ModifyIndex uint64
}

// ServiceSpec is the create payload for a service: the scalar attributes plus
// the full desired state of the child collections. Children that do not match
// the service type are ignored.
type ServiceSpec struct {
	Type        ServiceType
	Name        string
	Description string
	Endpoint    string

	// Region names the owning region UUID and is resolved by the REST layer.
	Region string

	Quotas   []*QuotaSpec
	Flavors  []*FlavorSpec
	Images   []*ImageSpec
	Networks []*NetworkSpec
}

// ToUpdate converts the create payload into the update payload shape used by
// full-state resubmissions. Every scalar field is marked as submitted.
func (s *ServiceSpec) ToUpdate() *ServiceUpdate {
	return &ServiceUpdate{
		Name:        &s.Name,
		Description: &s.Description,
		Endpoint:    &s.Endpoint,
		Quotas:      s.Quotas,
		Flavors:     s.Flavors,
		Images:      s.Images,
		Networks:    s.Networks,
	}
}

// ServiceUpdate is the update payload for a service. The scalar pointer
// fields follow patch semantics. The child lists are only consulted on forced
// updates, where they describe the full desired state of each collection.
type ServiceUpdate struct {
	Name        *string
	Description *string
	Endpoint    *string

	Quotas   []*QuotaSpec
	Flavors  []*FlavorSpec
	Images   []*ImageSpec
	Networks []*NetworkSpec
}
