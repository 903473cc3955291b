package structs

import (
	"errors"

	"github.com/fedcloud/catalogd/helper/pointer"
	multierror "github.com/hashicorp/go-multierror"
)

// Network is a virtual network owned by exactly one network service and, when
// private, linked to at most one project.
type Network struct {
	// UUID is the vendor-assigned network identifier, supplied by the client.
	UUID        string
	Name        string
	Description string

	IsShared         bool
	IsRouterExternal bool
	IsDefault        bool

	MTU       *int64
	ProxyHost *string
	ProxyUser *string

	Tags []string

	// ServiceID is the UUID of the owning network service. ProjectID is the
	// UUID of the project a private network is reserved for; empty when the
	// network is shared.
	ServiceID string
	ProjectID string

	CreateIndex uint64
	ModifyIndex uint64
}

// Copy returns a deep copy of the network.
func (n *Network) Copy() *Network {
	if n == nil {
		return nil
	}
	nn := *n
	nn.MTU = pointer.Copy(n.MTU)
	nn.ProxyHost = pointer.Copy(n.ProxyHost)
	nn.ProxyUser = pointer.Copy(n.ProxyUser)
	nn.Tags = copySliceString(n.Tags)
	return &nn
}

// Validate returns an error aggregating every invalid field.
func (n *Network) Validate() error {
	var mErr multierror.Error
	if n.UUID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing network UUID"))
	}
	if n.Name == "" {
		mErr.Errors = append(mErr.Errors, errors.New("missing network name"))
	}
	if n.ServiceID == "" {
		mErr.Errors = append(mErr.Errors, errors.New("network is not linked to a service"))
	}
	return validationError(&mErr)
}

// ApplyUpdate patches the network's scalar fields from u and reports whether
// anything changed. The project link is reconciled by the network manager.
func (n *Network) ApplyUpdate(u *NetworkUpdate, force bool) bool {
	changed := patchValue(&n.Name, u.Name, force)
	changed = patchValue(&n.Description, u.Description, force) || changed
	changed = patchValue(&n.IsShared, u.IsShared, force) || changed
	changed = patchValue(&n.IsRouterExternal, u.IsRouterExternal, force) || changed
	changed = patchValue(&n.IsDefault, u.IsDefault, force) || changed
	changed = patchPointer(&n.MTU, u.MTU, force) || changed
	changed = patchPointer(&n.ProxyHost, u.ProxyHost, force) || changed
	changed = patchPointer(&n.ProxyUser, u.ProxyUser, force) || changed
	changed = patchSlice(&n.Tags, u.Tags, force) || changed
	return changed
}

// NetworkSpec is the create payload for a network, nested in network service
// create and forced-update payloads.
type NetworkSpec struct {
	UUID        string
	Name        string
	Description string

	IsShared         bool
	IsRouterExternal bool
	IsDefault        bool

	MTU       *int64
	ProxyHost *string
	ProxyUser *string

	Tags []string

	// Project names the project UUID a private network is reserved for; it
	// may be empty.
	Project string
}

// ToUpdate converts the create payload into the update payload shape.
func (s *NetworkSpec) ToUpdate() *NetworkUpdate {
	return &NetworkUpdate{
		Name:             &s.Name,
		Description:      &s.Description,
		IsShared:         &s.IsShared,
		IsRouterExternal: &s.IsRouterExternal,
		IsDefault:        &s.IsDefault,
		MTU:              s.MTU,
		ProxyHost:        s.ProxyHost,
		ProxyUser:        s.ProxyUser,
		Tags:             s.Tags,
		Project:          &s.Project,
	}
}

// NetworkUpdate is the patch payload for a network. Project is only consulted
// on forced updates.
type NetworkUpdate struct {
	Name        *string
	Description *string

	IsShared         *bool
	IsRouterExternal *bool
	IsDefault        *bool

	MTU       *int64
	ProxyHost *string
	ProxyUser *string

	Tags []string

	Project *string
}
