package state

import (
	memdb "github.com/hashicorp/go-memdb"
)

const (
	TableProviders         = "providers"
	TableRegions           = "regions"
	TableProjects          = "projects"
	TableServices          = "services"
	TableQuotas            = "quotas"
	TableFlavors           = "flavors"
	TableImages            = "images"
	TableNetworks          = "networks"
	TableIdentityProviders = "identity_providers"
	TableUserGroups        = "user_groups"
	TableSLAs              = "slas"
)

const (
	indexID               = "id"
	indexEndpoint         = "endpoint"
	indexProvider         = "provider"
	indexRegion           = "region"
	indexService          = "service"
	indexProject          = "project"
	indexIdentityProvider = "identity_provider"
	indexUserGroup        = "user_group"
)

// stateStoreSchema returns the MemDB schema for the catalog. One table per
// entity type; relationship fields on the child side are indexed so parents
// can enumerate their children.
func stateStoreSchema() *memdb.DBSchema {
	db := &memdb.DBSchema{
		Tables: make(map[string]*memdb.TableSchema),
	}

	schemas := []func() *memdb.TableSchema{
		providerTableSchema,
		regionTableSchema,
		projectTableSchema,
		serviceTableSchema,
		quotaTableSchema,
		flavorTableSchema,
		imageTableSchema,
		networkTableSchema,
		identityProviderTableSchema,
		userGroupTableSchema,
		slaTableSchema,
	}
	for _, fn := range schemas {
		schema := fn()
		db.Tables[schema.Name] = schema
	}
	return db
}

func providerTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableProviders,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
		},
	}
}

func regionTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableRegions,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexProvider: {
				Name:         indexProvider,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "ProviderID",
				},
			},
		},
	}
}

func projectTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableProjects,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexProvider: {
				Name:         indexProvider,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "ProviderID",
				},
			},
		},
	}
}

func serviceTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableServices,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			// Endpoints are unique across the whole catalog.
			indexEndpoint: {
				Name:         indexEndpoint,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "Endpoint",
				},
			},
			indexRegion: {
				Name:         indexRegion,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "RegionID",
				},
			},
		},
	}
}

func quotaTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableQuotas,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexService: {
				Name:         indexService,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "ServiceID",
				},
			},
			indexProject: {
				Name:         indexProject,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "ProjectID",
				},
			},
		},
	}
}

func flavorTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableFlavors,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexService: {
				Name:         indexService,
				AllowMissing: true,
				Unique:       false,
				Indexer: &memdb.StringSliceFieldIndex{
					Field: "ServiceIDs",
				},
			},
			indexProject: {
				Name:         indexProject,
				AllowMissing: true,
				Unique:       false,
				Indexer: &memdb.StringSliceFieldIndex{
					Field: "ProjectIDs",
				},
			},
		},
	}
}

func imageTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableImages,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexService: {
				Name:         indexService,
				AllowMissing: true,
				Unique:       false,
				Indexer: &memdb.StringSliceFieldIndex{
					Field: "ServiceIDs",
				},
			},
			indexProject: {
				Name:         indexProject,
				AllowMissing: true,
				Unique:       false,
				Indexer: &memdb.StringSliceFieldIndex{
					Field: "ProjectIDs",
				},
			},
		},
	}
}

func identityProviderTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableIdentityProviders,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			// Identity provider endpoints are unique across the catalog.
			indexEndpoint: {
				Name:         indexEndpoint,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "Endpoint",
				},
			},
		},
	}
}

func userGroupTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableUserGroups,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexIdentityProvider: {
				Name:         indexIdentityProvider,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "IdentityProviderID",
				},
			},
		},
	}
}

func slaTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableSLAs,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexUserGroup: {
				Name:         indexUserGroup,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "UserGroupID",
				},
			},
			// A project carries at most one SLA.
			indexProject: {
				Name:         indexProject,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "ProjectID",
				},
			},
		},
	}
}

func networkTableSchema() *memdb.TableSchema {
	return &memdb.TableSchema{
		Name: TableNetworks,
		Indexes: map[string]*memdb.IndexSchema{
			indexID: {
				Name:         indexID,
				AllowMissing: false,
				Unique:       true,
				Indexer: &memdb.StringFieldIndex{
					Field: "UUID",
				},
			},
			indexService: {
				Name:         indexService,
				AllowMissing: false,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "ServiceID",
				},
			},
			indexProject: {
				Name:         indexProject,
				AllowMissing: true,
				Unique:       false,
				Indexer: &memdb.StringFieldIndex{
					Field: "ProjectID",
				},
			},
		},
	}
}
