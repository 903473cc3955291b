// Package mock provides entity fixtures for testing.
package mock

import (
	"fmt"
	"time"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/helper/pointer"
	"github.com/fedcloud/catalogd/helper/uuid"
)

// Provider returns a minimal openstack provider.
func Provider() *structs.Provider {
	return &structs.Provider{
		UUID:          uuid.Generate(),
		Name:          fmt.Sprintf("provider-%s", uuid.Short()),
		Type:          structs.ProviderTypeOpenStack,
		Status:        structs.ProviderStatusActive,
		IsPublic:      true,
		Description:   "mock provider",
		SupportEmails: []string{"ops@example.org"},
	}
}

// Region returns a region owned by the given provider.
func Region(providerID string) *structs.Region {
	return &structs.Region{
		UUID:       uuid.Generate(),
		Name:       fmt.Sprintf("region-%s", uuid.Short()),
		ProviderID: providerID,
	}
}

// Project returns a project owned by the given provider.
func Project(providerID string) *structs.Project {
	return &structs.Project{
		UUID:       uuid.Generate(),
		Name:       fmt.Sprintf("project-%s", uuid.Short()),
		ProviderID: providerID,
	}
}

// ComputeService returns a nova service in the given region.
func ComputeService(regionID string) *structs.Service {
	return &structs.Service{
		UUID:     uuid.Generate(),
		Type:     structs.ServiceTypeCompute,
		Name:     structs.ServiceNameOpenStackNova,
		Endpoint: fmt.Sprintf("https://compute.example.org/%s", uuid.Short()),
		RegionID: regionID,
	}
}

// BlockStorageService returns a cinder service in the given region.
func BlockStorageService(regionID string) *structs.Service {
	return &structs.Service{
		UUID:     uuid.Generate(),
		Type:     structs.ServiceTypeBlockStorage,
		Name:     structs.ServiceNameOpenStackCinder,
		Endpoint: fmt.Sprintf("https://block-storage.example.org/%s", uuid.Short()),
		RegionID: regionID,
	}
}

// NetworkService returns a neutron service in the given region.
func NetworkService(regionID string) *structs.Service {
	return &structs.Service{
		UUID:     uuid.Generate(),
		Type:     structs.ServiceTypeNetwork,
		Name:     structs.ServiceNameOpenStackNeutron,
		Endpoint: fmt.Sprintf("https://network.example.org/%s", uuid.Short()),
		RegionID: regionID,
	}
}

// IdentityService returns a keystone service in the given region.
func IdentityService(regionID string) *structs.Service {
	return &structs.Service{
		UUID:     uuid.Generate(),
		Type:     structs.ServiceTypeIdentity,
		Name:     structs.ServiceNameOpenStackKeystone,
		Endpoint: fmt.Sprintf("https://identity.example.org/%s", uuid.Short()),
		RegionID: regionID,
	}
}

// BlockStorageQuota returns a total block-storage quota linking the given
// service and project.
func BlockStorageQuota(serviceID, projectID string) *structs.Quota {
	return &structs.Quota{
		UUID:      uuid.Generate(),
		Type:      structs.QuotaTypeBlockStorage,
		Gigabytes: pointer.Of(int64(100)),
		Volumes:   pointer.Of(int64(10)),
		ServiceID: serviceID,
		ProjectID: projectID,
	}
}

// ComputeQuota returns a total compute quota linking the given service and
// project.
func ComputeQuota(serviceID, projectID string) *structs.Quota {
	return &structs.Quota{
		UUID:      uuid.Generate(),
		Type:      structs.QuotaTypeCompute,
		Cores:     pointer.Of(int64(16)),
		Instances: pointer.Of(int64(8)),
		RAM:       pointer.Of(int64(32768)),
		ServiceID: serviceID,
		ProjectID: projectID,
	}
}

// Flavor returns a flavor offered by the given service.
func Flavor(serviceID string) *structs.Flavor {
	return &structs.Flavor{
		UUID:       uuid.Generate(),
		Name:       fmt.Sprintf("m1.%s", uuid.Short()),
		Disk:       20,
		RAM:        4096,
		VCPUs:      2,
		IsPublic:   true,
		ServiceIDs: []string{serviceID},
	}
}

// Image returns an image offered by the given service.
func Image(serviceID string) *structs.Image {
	return &structs.Image{
		UUID:       uuid.Generate(),
		Name:       fmt.Sprintf("ubuntu-%s", uuid.Short()),
		OSType:     pointer.Of("linux"),
		OSDistro:   pointer.Of("ubuntu"),
		OSVersion:  pointer.Of("24.04"),
		IsPublic:   true,
		ServiceIDs: []string{serviceID},
	}
}

// IdentityProvider returns a minimal identity provider.
func IdentityProvider() *structs.IdentityProvider {
	return &structs.IdentityProvider{
		UUID:       uuid.Generate(),
		Endpoint:   fmt.Sprintf("https://aai.example.org/%s", uuid.Short()),
		GroupClaim: "eduperson_entitlement",
	}
}

// UserGroup returns a user group owned by the given identity provider.
func UserGroup(idpID string) *structs.UserGroup {
	return &structs.UserGroup{
		UUID:               uuid.Generate(),
		Name:               fmt.Sprintf("group-%s", uuid.Short()),
		IdentityProviderID: idpID,
	}
}

// SLA returns a one-year agreement linking the given user group and project.
func SLA(groupID, projectID string) *structs.SLA {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &structs.SLA{
		UUID:        uuid.Generate(),
		DocUUID:     uuid.Generate(),
		StartDate:   start,
		EndDate:     start.AddDate(1, 0, 0),
		UserGroupID: groupID,
		ProjectID:   projectID,
	}
}

// Network returns a shared network owned by the given service.
func Network(serviceID string) *structs.Network {
	return &structs.Network{
		UUID:      uuid.Generate(),
		Name:      fmt.Sprintf("net-%s", uuid.Short()),
		IsShared:  true,
		MTU:       pointer.Of(int64(1500)),
		ServiceID: serviceID,
	}
}
