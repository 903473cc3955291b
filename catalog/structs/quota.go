package structs

import (
	"errors"
	"fmt"

	"github.com/fedcloud/catalogd/helper/pointer"
	multierror "github.com/hashicorp/go-multierror"
)

// QuotaType mirrors the category of the owning service. Identity services do
// not own quotas.
type QuotaType string

const (
	QuotaTypeBlockStorage QuotaType = "block-storage"
	QuotaTypeCompute      QuotaType = "compute"
	QuotaTypeNetwork      QuotaType = "network"
)

// Valid reports whether the quota type is a known member of the enum.
func (t QuotaType) Valid() bool {
	switch t {
	case QuotaTypeBlockStorage, QuotaTypeCompute, QuotaTypeNetwork:
		return true
	default:
		return false
	}
}

// QuotaTypeForService maps a service type onto the quota type its quotas
// carry. The second return is false for service types without quotas.
func QuotaTypeForService(t ServiceType) (QuotaType, bool) {
	switch t {
	case ServiceTypeBlockStorage:
		return QuotaTypeBlockStorage, true
	case ServiceTypeCompute:
		return QuotaTypeCompute, true
	case ServiceTypeNetwork:
		return QuotaTypeNetwork, true
	default:
		return "", false
	}
}

// Quota is a resource-consumption limit applied to one project for one
// service. A nil limit field means "no limit"; -1 conventionally means
// "unlimited" where the vendor API distinguishes the two.
//
// Uniqueness invariant: for a given (service, project) pair at most one quota
// with PerUser set and at most one without may exist simultaneously.
type Quota struct {
	UUID        string
	Type        QuotaType
	Description string

	// PerUser selects whether the limit applies to each individual user
	// rather than to the whole project.
	PerUser bool

	// Usage marks the quota as describing current consumption instead of a
	// limit.
	Usage bool

	// Block-storage limits.
	Gigabytes          *int64
	PerVolumeGigabytes *int64
	Volumes            *int64

	// Compute limits.
	Cores     *int64
	Instances *int64
	RAM       *int64

	// Network limits.
	Networks           *int64
	Ports              *int64
	PublicIPs          *int64
	SecurityGroups     *int64
	SecurityGroupRules *int64

	// ServiceID and ProjectID are the UUIDs of the owning service and
	// project. Both links are required.
	ServiceID string
	ProjectID string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a deep copy of the quota.
func (q *Quota) Copy() *Quota {
	if q == nil {
		return nil
	}
	nq := *q
	nq.Gigabytes = pointer.Copy(q.Gigabytes)
	nq.PerVolumeGigabytes = pointer.Copy(q.PerVolumeGigabytes)
	nq.Volumes = pointer.Copy(q.Volumes)
	nq.Cores = pointer.Copy(q.Cores)
	nq.Instances = pointer.Copy(q.Instances)
	nq.RAM = pointer.Copy(q.RAM)
	nq.Networks = pointer.Copy(q.Networks)
	nq.Ports = pointer.Copy(q.Ports)
	nq.PublicIPs = pointer.Copy(q.PublicIPs)
	nq.SecurityGroups = pointer.Copy(q.SecurityGroups)
	nq.SecurityGroupRules = pointer.Copy(q.SecurityGroupRules)
	return &nq
}

// Validate returns an error aggregating every invalid field.
func (q *Quota) Validate() error {
	var mErr multierror.Error
	if q.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing quota UUID"))
	}
	if !q.Type.Valid() {
		mErr.Errors = append(mErr.Errors, fmt.Errorf("invalid quota type %q", q.Type))
	}
	if q.ServiceID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("quota is not linked to a service"))
	}
	if q.ProjectID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("quota is not linked to a project"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the quota's scalar fields from u and reports whether
// anything changed. Relationship references (u.Project) are handled by the
// quota manager, never here.
func (q *Quota) ApplyUpdate(u *QuotaUpdate, force bool) bool {
	changed := patchValue(&q.Description, u.Description, force)
	changed = patchValue(&q.PerUser, u.PerUser, force) || changed
	changed = patchValue(&q.Usage, u.Usage, force) || changed
	changed = patchPointer(&q.Gigabytes, u.Gigabytes, force) || changed
	changed = patchPointer(&q.PerVolumeGigabytes, u.PerVolumeGigabytes, force) || changed
	changed = patchPointer(&q.Volumes, u.Volumes, force) || changed
	changed = patchPointer(&q.Cores, u.Cores, force) || changed
	changed = patchPointer(&q.Instances, u.Instances, force) || changed
	changed = patchPointer(&q.RAM, u.RAM, force) || changed
	changed = patchPointer(&q.Networks, u.Networks, force) || changed
	changed = patchPointer(&q.Ports, u.Ports, force) || changed
	changed = patchPointer(&q.PublicIPs, u.PublicIPs, force) || changed
	changed = patchPointer(&q.SecurityGroups, u.SecurityGroups, force) || changed
	changed = patchPointer(&q.SecurityGroupRules, u.SecurityGroupRules, force) || changed
	return changed
}

// QuotaSpec is the create payload for a quota, nested in service create and
// forced-update payloads.
type QuotaSpec struct {
	Description string
	PerUser     bool
	Usage       bool

	Gigabytes          *int64
	PerVolumeGigabytes *int64
	Volumes            *int64

	Cores     *int64
	Instances *int64
	RAM       *int64

	Networks           *int64
	Ports              *int64
	PublicIPs          *int64
	SecurityGroups     *int64
	SecurityGroupRules *int64

	// Project names the owning project UUID, resolved against the provider's
	// project pool.
	Project string
}

// ToUpdate converts the create payload into the update payload shape. Every
// field is marked as submitted, so a forced update resets fields the spec
// leaves at their defaults.
func (s *QuotaSpec) ToUpdate() *QuotaUpdate {
	return &QuotaUpdate{
		Description:        &s.Description,
		PerUser:            &s.PerUser,
		Usage:              &s.Usage,
		Gigabytes:          s.Gigabytes,
		PerVolumeGigabytes: s.PerVolumeGigabytes,
		Volumes:            s.Volumes,
		Cores:              s.Cores,
		Instances:          s.Instances,
		RAM:                s.RAM,
		Networks:           s.Networks,
		Ports:              s.Ports,
		PublicIPs:          s.PublicIPs,
		SecurityGroups:     s.SecurityGroups,
		SecurityGroupRules: s.SecurityGroupRules,
		Project:            &s.Project,
	}
}

// QuotaUpdate is the update payload for a quota. Nil fields were not
// submitted. Project is only consulted on forced updates, where it may move
// the quota to another project of the same provider.
type QuotaUpdate struct {
	Description *string
	PerUser     *bool
	Usage       *bool

	Gigabytes          *int64
	PerVolumeGigabytes *int64
	Volumes            *int64

	Cores     *int64
	Instances *int64
	RAM       *int64

	Networks           *int64
	Ports              *int64
	PublicIPs          *int64
	SecurityGroups     *int64
	SecurityGroupRules *int64

	Project *string
}
