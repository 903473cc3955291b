package structs

import (
	"errors"
	"time"

	multierror "github.com/hashicorp/go-multierror"
)

// IdentityProvider is an authentication authority federated into the catalog.
// It owns user groups; access to projects is granted to user groups through
// SLAs.
type IdentityProvider struct {
	UUID string

	// Endpoint is the URL of the identity provider; it is unique across the
	// catalog.
	Endpoint string

	// GroupClaim names the token claim carrying the user group name.
	GroupClaim string

	Description string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a copy of the identity provider.
func (i *IdentityProvider) Copy() *IdentityProvider {
	if i == nil {
		return nil
	}
	ni := *i
	return &ni
}

// Validate returns an error aggregating every invalid field.
func (i *IdentityProvider) Validate() error {
	var mErr multierror.Error
	if i.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing identity provider UUID"))
	}
	if i.Endpoint == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing identity provider endpoint"))
	}
	if i.GroupClaim == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing identity provider group claim"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the identity provider's scalar fields from u and
// reports whether anything changed. User groups are reconciled by the
// identity provider manager, never here.
func (i *IdentityProvider) ApplyUpdate(u *IdentityProviderUpdate, force bool) bool {
	changed := patchValue(&i.Endpoint, u.Endpoint, force)
	changed = patchValue(&i.GroupClaim, u.GroupClaim, force) || changed
	changed = patchValue(&i.Description, u.Description, force) || changed
	return changed
}

// IdentityProviderSpec is the create payload for an identity provider,
// optionally carrying the initial user groups.
type IdentityProviderSpec struct {
	Endpoint    string
	GroupClaim  string
	Description string

	UserGroups []*UserGroupSpec
}

// IdentityProviderUpdate is the update payload for an identity provider. The
// user group list is only consulted on forced updates, where it describes the
// full desired state of the collection.
type IdentityProviderUpdate struct {
	Endpoint    *string
	GroupClaim  *string
	Description *string

	UserGroups []*UserGroupSpec
}

// UserGroup is a set of users recognized by an identity provider. Group names
// are unique within their provider.
type UserGroup struct {
	UUID        string
	Name        string
	Description string

	// IdentityProviderID is the UUID of the owning identity provider.
	IdentityProviderID string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a copy of the user group.
func (g *UserGroup) Copy() *UserGroup {
	if g == nil {
		return nil
	}
	ng := *g
	return &ng
}

// Validate returns an error aggregating every invalid field.
func (g *UserGroup) Validate() error {
	var mErr multierror.Error
	if g.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing user group UUID"))
	}
	if g.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing user group name"))
	}
	if g.IdentityProviderID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("user group is not linked to an identity provider"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the user group's scalar fields from u and reports
// whether anything changed. SLAs are reconciled by the user group manager.
func (g *UserGroup) ApplyUpdate(u *UserGroupUpdate, force bool) bool {
	changed := patchValue(&g.Name, u.Name, force)
	changed = patchValue(&g.Description, u.Description, force) || changed
	return changed
}

// UserGroupSpec is the create payload for a user group, optionally carrying
// the initial SLAs.
type UserGroupSpec struct {
	Name        string
	Description string

	SLAs []*SLASpec
}

// ToUpdate converts the create payload into the update payload shape used by
// full-state resubmissions.
func (s *UserGroupSpec) ToUpdate() *UserGroupUpdate {
	return &UserGroupUpdate{
		Name:        &s.Name,
		Description: &s.Description,
		SLAs:        s.SLAs,
	}
}

// UserGroupUpdate is the update payload for a user group. The SLA list is
// only consulted on forced updates, where it describes the full desired state
// of the collection.
type UserGroupUpdate struct {
	Name        *string
	Description *string

	SLAs []*SLASpec
}

// SLA is a service level agreement granting one user group access to one
// project for a validity window. The agreement document lives outside the
// catalog; DocUUID identifies it.
//
// Uniqueness invariant: a project carries at most one SLA at a time. Creating
// an SLA for an already covered project replaces the previous agreement.
type SLA struct {
	UUID string

	// DocUUID is the identifier of the agreement document and the key child
	// reconciliation matches resubmitted SLAs on.
	DocUUID string

	Description string

	StartDate time.Time
	EndDate   time.Time

	// UserGroupID and ProjectID are the UUIDs of the granted user group and
	// the covered project. Both links are required.
	UserGroupID string
	ProjectID   string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a copy of the SLA.
func (s *SLA) Copy() *SLA {
	if s == nil {
		return nil
	}
	ns := *s
	return &ns
}

// Validate returns an error aggregating every invalid field.
func (s *SLA) Validate() error {
	var mErr multierror.Error
	if s.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing SLA UUID"))
	}
	if s.DocUUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing SLA document UUID"))
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		mErr.Errors = append(mErr.Errors, errors.New("missing SLA validity dates"))
	} else if !s.StartDate.Before(s.EndDate) {
		mErr.Errors = append(mErr.Errors, errors.New("SLA start date is not before its end date"))
	}
	if s.UserGroupID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("SLA is not linked to a user group"))
	}
	if s.ProjectID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("SLA is not linked to a project"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the SLA's scalar fields from u and reports whether
// anything changed. The project link is handled by the SLA manager.
func (s *SLA) ApplyUpdate(u *SLAUpdate, force bool) bool {
	changed := patchValue(&s.DocUUID, u.DocUUID, force)
	changed = patchValue(&s.Description, u.Description, force) || changed
	changed = patchValue(&s.StartDate, u.StartDate, force) || changed
	changed = patchValue(&s.EndDate, u.EndDate, force) || changed
	return changed
}

// SLASpec is the create payload for an SLA, nested in user group create and
// forced-update payloads.
type SLASpec struct {
	DocUUID     string
	Description string

	StartDate time.Time
	EndDate   time.Time

	// Project names the covered project UUID.
	Project string
}

// ToUpdate converts the create payload into the update payload shape. Every
// field is marked as submitted.
func (s *SLASpec) ToUpdate() *SLAUpdate {
	return &SLAUpdate{
		DocUUID:     &s.DocUUID,
		Description: &s.Description,
		StartDate:   &s.StartDate,
		EndDate:     &s.EndDate,
		Project:     &s.Project,
	}
}

// SLAUpdate is the update payload for an SLA. Nil fields were not submitted.
// Project is only consulted on forced updates, where it may move the
// agreement to another project; the target project must not carry an SLA
// already.
type SLAUpdate struct {
	DocUUID     *string
	Description *string

	StartDate *time.Time
	EndDate   *time.Time

	Project *string
}
