// Package crud implements the mutation layer of the catalog: one manager per
// entity type, all sharing a single state store.
//
// The managers own the relationship semantics the flat entity tables cannot
// express on their own: resolving submitted project references against the
// owning provider's project pool, reconciling resubmitted child collections
// against the persisted sets, and cascading deletions. Every public method
// runs in exactly one store transaction; the internal methods suffixed Txn
// are building blocks that thread a caller-owned transaction.
//
// Update methods return a nil entity with a nil error when the submitted
// payload changed nothing. The REST layer maps that outcome to 304 Not
// Modified.
package crud

import (
	"github.com/fedcloud/catalogd/catalog/state"
	"github.com/hashicorp/go-hclog"
)

// Catalog bundles the per-entity managers wired over one state store.
type Catalog struct {
	logger hclog.Logger
	state  *state.StateStore

	Providers         *ProviderManager
	Regions           *RegionManager
	Projects          *ProjectManager
	Services          *ServiceManager
	Quotas            *QuotaManager
	Flavors           *FlavorManager
	Images            *ImageManager
	Networks          *NetworkManager
	IdentityProviders *IdentityProviderManager
	UserGroups        *UserGroupManager
	SLAs              *SLAManager
}

// NewCatalog constructs the manager set on top of the given store.
func NewCatalog(logger hclog.Logger, store *state.StateStore) *Catalog {
	c := &Catalog{
		logger: logger.Named("crud"),
		state:  store,
	}
	c.Providers = &ProviderManager{c: c, logger: c.logger.Named("provider")}
	c.Regions = &RegionManager{c: c, logger: c.logger.Named("region")}
	c.Projects = &ProjectManager{c: c, logger: c.logger.Named("project")}
	c.Services = &ServiceManager{c: c, logger: c.logger.Named("service")}
	c.Quotas = &QuotaManager{c: c, logger: c.logger.Named("quota")}
	c.Flavors = &FlavorManager{c: c, logger: c.logger.Named("flavor")}
	c.Images = &ImageManager{c: c, logger: c.logger.Named("image")}
	c.Networks = &NetworkManager{c: c, logger: c.logger.Named("network")}
	c.IdentityProviders = &IdentityProviderManager{c: c, logger: c.logger.Named("identity_provider")}
	c.UserGroups = &UserGroupManager{c: c, logger: c.logger.Named("user_group")}
	c.SLAs = &SLAManager{c: c, logger: c.logger.Named("sla")}
	return c
}

// State exposes the underlying store for read paths.
func (c *Catalog) State() *state.StateStore {
	return c.state
}
