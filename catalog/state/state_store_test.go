package state

import (
	"testing"

	"github.com/fedcloud/catalogd/catalog/mock"
	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/ci"
	"github.com/shoenig/test/must"
)

func TestStateStore_UpsertProvider(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	p := mock.Provider()

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertProvider(p))
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.ProviderByUUID(p.UUID)
	must.NoError(t, err)
	must.NotNil(t, out)
	must.Eq(t, p.Name, out.Name)
	must.Eq(t, out.CreateIndex, out.ModifyIndex)

	missing, err := read.ProviderByUUID("nope")
	must.NoError(t, err)
	must.Nil(t, missing)
}

func TestStateStore_UpsertProvider_PreservesCreateIndex(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	p := mock.Provider()

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertProvider(p))
	txn.Commit()

	upd := p.Copy()
	upd.Name = "renamed"
	txn = store.WriteTxn()
	must.NoError(t, txn.UpsertProvider(upd))
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.ProviderByUUID(p.UUID)
	must.NoError(t, err)
	must.Eq(t, "renamed", out.Name)
	must.Eq(t, p.CreateIndex, out.CreateIndex)
	must.Greater(t, out.CreateIndex, out.ModifyIndex)
}

func TestStateStore_Providers_ListOptions(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	txn := store.WriteTxn()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		p := mock.Provider()
		p.Name = name
		must.NoError(t, txn.UpsertProvider(p))
	}
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.Providers(structs.QueryOptions{Sort: "name"})
	must.NoError(t, err)
	must.Len(t, 3, out)
	must.Eq(t, "alpha", out[0].Name)
	must.Eq(t, "charlie", out[2].Name)

	out, err = read.Providers(structs.QueryOptions{Sort: "-name"})
	must.NoError(t, err)
	must.Eq(t, "charlie", out[0].Name)

	out, err = read.Providers(structs.QueryOptions{Sort: "name", Limit: 1, Skip: 1})
	must.NoError(t, err)
	must.Len(t, 1, out)
	must.Eq(t, "bravo", out[0].Name)

	out, err = read.Providers(structs.QueryOptions{Skip: 5})
	must.NoError(t, err)
	must.Len(t, 0, out)

	_, err = read.Providers(structs.QueryOptions{Sort: "bogus"})
	must.Error(t, err)
}

func TestStateStore_RegionsByProvider(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	p1 := mock.Provider()
	p2 := mock.Provider()
	r1 := mock.Region(p1.UUID)
	r2 := mock.Region(p1.UUID)
	r3 := mock.Region(p2.UUID)

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertProvider(p1))
	must.NoError(t, txn.UpsertProvider(p2))
	for _, r := range []*structs.Region{r1, r2, r3} {
		must.NoError(t, txn.UpsertRegion(r))
	}
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.RegionsByProvider(p1.UUID)
	must.NoError(t, err)
	must.Len(t, 2, out)

	out, err = read.RegionsByProvider(p2.UUID)
	must.NoError(t, err)
	must.Len(t, 1, out)
	must.Eq(t, r3.UUID, out[0].UUID)
}

func TestStateStore_ServiceByEndpoint(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	svc := mock.ComputeService("r1")

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertService(svc))
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.ServiceByEndpoint(svc.Endpoint)
	must.NoError(t, err)
	must.NotNil(t, out)
	must.Eq(t, svc.UUID, out.UUID)

	none, err := read.ServiceByEndpoint("https://elsewhere.example.org")
	must.NoError(t, err)
	must.Nil(t, none)
}

func TestStateStore_QuotasByServiceAndProject(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	svc := mock.BlockStorageService("r1")
	q1 := mock.BlockStorageQuota(svc.UUID, "proj-1")
	q2 := mock.BlockStorageQuota(svc.UUID, "proj-2")
	q3 := mock.BlockStorageQuota("other-svc", "proj-1")

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertService(svc))
	for _, q := range []*structs.Quota{q1, q2, q3} {
		must.NoError(t, txn.UpsertQuota(q))
	}
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	byService, err := read.QuotasByService(svc.UUID)
	must.NoError(t, err)
	must.Len(t, 2, byService)

	byProject, err := read.QuotasByProject("proj-1")
	must.NoError(t, err)
	must.Len(t, 2, byProject)
}

func TestStateStore_FlavorsBySharedService(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	f := mock.Flavor("svc-1")
	f.ServiceIDs = append(f.ServiceIDs, "svc-2")
	f.ProjectIDs = []string{"proj-1"}

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertFlavor(f))
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	for _, svcID := range []string{"svc-1", "svc-2"} {
		out, err := read.FlavorsByService(svcID)
		must.NoError(t, err)
		must.Len(t, 1, out)
		must.Eq(t, f.UUID, out[0].UUID)
	}

	out, err := read.FlavorsByProject("proj-1")
	must.NoError(t, err)
	must.Len(t, 1, out)
}

func TestStateStore_DeleteQuota(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	q := mock.ComputeQuota("svc-1", "proj-1")

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertQuota(q))
	txn.Commit()

	txn = store.WriteTxn()
	must.NoError(t, txn.DeleteQuota(q.UUID))
	must.Error(t, txn.DeleteQuota(q.UUID))
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.QuotaByUUID(q.UUID)
	must.NoError(t, err)
	must.Nil(t, out)
}

func TestStateStore_IdentityWingLookups(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	idp := mock.IdentityProvider()
	g1 := mock.UserGroup(idp.UUID)
	g2 := mock.UserGroup(idp.UUID)
	s1 := mock.SLA(g1.UUID, "proj-1")
	s2 := mock.SLA(g1.UUID, "proj-2")

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertIdentityProvider(idp))
	for _, g := range []*structs.UserGroup{g1, g2} {
		must.NoError(t, txn.UpsertUserGroup(g))
	}
	for _, s := range []*structs.SLA{s1, s2} {
		must.NoError(t, txn.UpsertSLA(s))
	}
	txn.Commit()

	read := store.ReadTxn()
	defer read.Abort()

	byEndpoint, err := read.IdentityProviderByEndpoint(idp.Endpoint)
	must.NoError(t, err)
	must.NotNil(t, byEndpoint)
	must.Eq(t, idp.UUID, byEndpoint.UUID)

	groups, err := read.UserGroupsByIdentityProvider(idp.UUID)
	must.NoError(t, err)
	must.Len(t, 2, groups)

	slas, err := read.SLAsByUserGroup(g1.UUID)
	must.NoError(t, err)
	must.Len(t, 2, slas)

	byProject, err := read.SLAByProject("proj-2")
	must.NoError(t, err)
	must.NotNil(t, byProject)
	must.Eq(t, s2.UUID, byProject.UUID)

	none, err := read.SLAByProject("proj-3")
	must.NoError(t, err)
	must.Nil(t, none)
}

func TestStateStore_AbortDiscardsWrites(t *testing.T) {
	ci.Parallel(t)
	store := TestStateStore(t)

	p := mock.Provider()

	txn := store.WriteTxn()
	must.NoError(t, txn.UpsertProvider(p))
	txn.Abort()

	read := store.ReadTxn()
	defer read.Abort()

	out, err := read.ProviderByUUID(p.UUID)
	must.NoError(t, err)
	must.Nil(t, out)
}
