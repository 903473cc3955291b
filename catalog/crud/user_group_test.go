package crud

import (
	"testing"
	"time"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/ci"
	"github.com/fedcloud/catalogd/helper/pointer"
	"github.com/shoenig/test/must"
)

func slaSpec(doc, project string) *structs.SLASpec {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &structs.SLASpec{
		DocUUID:   doc,
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
		Project:   project,
	}
}

func idpSpec() *structs.IdentityProviderSpec {
	return &structs.IdentityProviderSpec{
		Endpoint:   "https://aai.example.org",
		GroupClaim: "eduperson_entitlement",
	}
}

func TestIdentityProviderManager_Create_Nested(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	spec := idpSpec()
	spec.UserGroups = []*structs.UserGroupSpec{
		{Name: "admins", SLAs: []*structs.SLASpec{slaSpec("doc-1", "proj-1")}},
		{Name: "users"},
	}

	idp, err := env.c.IdentityProviders.Create(spec)
	must.NoError(t, err)
	must.NotEq(t, "", idp.UUID)

	read := env.c.State().ReadTxn()
	defer read.Abort()

	groups, err := read.UserGroupsByIdentityProvider(idp.UUID)
	must.NoError(t, err)
	must.Len(t, 2, groups)

	sla, err := read.SLAByProject("proj-1")
	must.NoError(t, err)
	must.NotNil(t, sla)
	must.Eq(t, "doc-1", sla.DocUUID)

	// A second identity provider on the same endpoint is rejected.
	_, err = env.c.IdentityProviders.Create(idpSpec())
	must.ErrorIs(t, err, structs.ErrDuplicateEndpoint)
}

func TestIdentityProviderManager_Create_Invalid(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	_, err := env.c.IdentityProviders.Create(&structs.IdentityProviderSpec{
		Endpoint: "https://aai.example.org",
	})
	must.ErrorIs(t, err, structs.ErrValidation)
}

func TestIdentityProviderManager_Update(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)

	out, err := env.c.IdentityProviders.Update(idp.UUID, &structs.IdentityProviderUpdate{
		GroupClaim: pointer.Of("entitlements"),
	}, false)
	must.NoError(t, err)
	must.Eq(t, "entitlements", out.GroupClaim)

	// Identical payload reports no change.
	out, err = env.c.IdentityProviders.Update(idp.UUID, &structs.IdentityProviderUpdate{
		GroupClaim: pointer.Of("entitlements"),
	}, false)
	must.NoError(t, err)
	must.Nil(t, out)

	_, err = env.c.IdentityProviders.Update("nope", &structs.IdentityProviderUpdate{}, false)
	must.ErrorIs(t, err, structs.ErrNotFound)
}

func TestIdentityProviderManager_Update_ReconcilesUserGroups(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	spec := idpSpec()
	spec.UserGroups = []*structs.UserGroupSpec{
		{Name: "admins"},
		{Name: "users"},
	}
	idp, err := env.c.IdentityProviders.Create(spec)
	must.NoError(t, err)

	// Resubmission drops one group and adds another.
	upd := &structs.IdentityProviderUpdate{
		Endpoint:   &spec.Endpoint,
		GroupClaim: &spec.GroupClaim,
		UserGroups: []*structs.UserGroupSpec{
			{Name: "admins"},
			{Name: "operators"},
		},
	}
	out, err := env.c.IdentityProviders.Update(idp.UUID, upd, true)
	must.NoError(t, err)
	must.NotNil(t, out)

	read := env.c.State().ReadTxn()
	defer read.Abort()
	groups, err := read.UserGroupsByIdentityProvider(idp.UUID)
	must.NoError(t, err)
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	must.SliceContains(t, names, "admins")
	must.SliceContains(t, names, "operators")
	must.SliceNotContains(t, names, "users")
}

func TestIdentityProviderManager_Delete_Cascades(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	spec := idpSpec()
	spec.UserGroups = []*structs.UserGroupSpec{
		{Name: "admins", SLAs: []*structs.SLASpec{slaSpec("doc-1", "proj-1")}},
	}
	idp, err := env.c.IdentityProviders.Create(spec)
	must.NoError(t, err)

	must.NoError(t, env.c.IdentityProviders.Delete(idp.UUID))

	read := env.c.State().ReadTxn()
	defer read.Abort()

	got, err := read.IdentityProviderByUUID(idp.UUID)
	must.NoError(t, err)
	must.Nil(t, got)
	groups, err := read.UserGroupsByIdentityProvider(idp.UUID)
	must.NoError(t, err)
	must.Len(t, 0, groups)
	sla, err := read.SLAByProject("proj-1")
	must.NoError(t, err)
	must.Nil(t, sla)

	must.ErrorIs(t, env.c.IdentityProviders.Delete(idp.UUID), structs.ErrNotFound)
}

func TestUserGroupManager_Create_DuplicateName(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)

	_, err = env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)

	_, err = env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.ErrorContains(t, err, "already exists")

	_, err = env.c.UserGroups.Create("nope", &structs.UserGroupSpec{Name: "admins"})
	must.ErrorIs(t, err, structs.ErrNotFound)
}

func TestUserGroupManager_Update_RenameCollision(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)

	_, err = env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)
	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "users"})
	must.NoError(t, err)

	_, err = env.c.UserGroups.Update(g.UUID, &structs.UserGroupUpdate{
		Name: pointer.Of("admins"),
	}, false)
	must.ErrorContains(t, err, "already exists")

	out, err := env.c.UserGroups.Update(g.UUID, &structs.UserGroupUpdate{
		Name: pointer.Of("operators"),
	}, false)
	must.NoError(t, err)
	must.Eq(t, "operators", out.Name)
}

func TestUserGroupManager_Update_ReconcilesSLAs(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)

	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{
		Name: "admins",
		SLAs: []*structs.SLASpec{
			slaSpec("doc-1", "proj-1"),
			slaSpec("doc-2", "proj-2"),
		},
	})
	must.NoError(t, err)

	// Resubmission keeps doc-1 with a later end date and drops doc-2.
	renewed := slaSpec("doc-1", "proj-1")
	renewed.EndDate = renewed.EndDate.AddDate(1, 0, 0)
	out, err := env.c.UserGroups.Update(g.UUID, &structs.UserGroupUpdate{
		Name: pointer.Of("admins"),
		SLAs: []*structs.SLASpec{renewed},
	}, true)
	must.NoError(t, err)
	must.NotNil(t, out)

	read := env.c.State().ReadTxn()
	defer read.Abort()

	slas, err := read.SLAsByUserGroup(g.UUID)
	must.NoError(t, err)
	must.Len(t, 1, slas)
	must.Eq(t, "doc-1", slas[0].DocUUID)
	must.Eq(t, renewed.EndDate, slas[0].EndDate)
	dropped, err := read.SLAByProject("proj-2")
	must.NoError(t, err)
	must.Nil(t, dropped)
}

func TestSLAManager_Create_ReplacesProjectSLA(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)

	g1, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)
	g2, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "users"})
	must.NoError(t, err)

	old, err := env.c.SLAs.Create(g1.UUID, slaSpec("doc-1", "proj-1"))
	must.NoError(t, err)

	// Granting proj-1 to another group revokes the previous agreement.
	_, err = env.c.SLAs.Create(g2.UUID, slaSpec("doc-2", "proj-1"))
	must.NoError(t, err)

	read := env.c.State().ReadTxn()
	defer read.Abort()

	gone, err := read.SLAByUUID(old.UUID)
	must.NoError(t, err)
	must.Nil(t, gone)
	current, err := read.SLAByProject("proj-1")
	must.NoError(t, err)
	must.Eq(t, "doc-2", current.DocUUID)
	must.Eq(t, g2.UUID, current.UserGroupID)
}

func TestSLAManager_Create_UnknownProject(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)
	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)

	_, err = env.c.SLAs.Create(g.UUID, slaSpec("doc-1", "proj-x"))
	must.ErrorIs(t, err, structs.ErrUnknownProject)
}

func TestSLAManager_Update(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)
	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)

	sla, err := env.c.SLAs.Create(g.UUID, slaSpec("doc-1", "proj-1"))
	must.NoError(t, err)

	// Extending the validity window is an ordinary patch.
	later := sla.EndDate.AddDate(1, 0, 0)
	out, err := env.c.SLAs.Update(sla.UUID, &structs.SLAUpdate{
		EndDate: pointer.Of(later),
	}, false)
	must.NoError(t, err)
	must.Eq(t, later, out.EndDate)

	// A start date past the end date fails validation.
	_, err = env.c.SLAs.Update(sla.UUID, &structs.SLAUpdate{
		StartDate: pointer.Of(later.AddDate(1, 0, 0)),
	}, false)
	must.ErrorIs(t, err, structs.ErrValidation)
}

func TestSLAManager_Update_ProjectMove(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)
	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)

	sla, err := env.c.SLAs.Create(g.UUID, slaSpec("doc-1", "proj-1"))
	must.NoError(t, err)

	// Without force the project reference is ignored.
	out, err := env.c.SLAs.Update(sla.UUID, &structs.SLAUpdate{
		Project: pointer.Of("proj-2"),
	}, false)
	must.NoError(t, err)
	must.Nil(t, out)

	// With force the agreement moves to the free project.
	upd := slaSpec("doc-1", "proj-2").ToUpdate()
	out, err = env.c.SLAs.Update(sla.UUID, upd, true)
	must.NoError(t, err)
	must.Eq(t, "proj-2", out.ProjectID)

	// Moving onto an occupied project is an error, not a replacement.
	other, err := env.c.SLAs.Create(g.UUID, slaSpec("doc-2", "proj-1"))
	must.NoError(t, err)
	_, err = env.c.SLAs.Update(other.UUID, slaSpec("doc-2", "proj-2").ToUpdate(), true)
	must.ErrorContains(t, err, "already carries")

	// An unknown target fails hard.
	_, err = env.c.SLAs.Update(other.UUID, slaSpec("doc-2", "proj-x").ToUpdate(), true)
	must.ErrorIs(t, err, structs.ErrUnknownProject)
}

func TestSLAManager_Delete(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)
	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)
	sla, err := env.c.SLAs.Create(g.UUID, slaSpec("doc-1", "proj-1"))
	must.NoError(t, err)

	must.NoError(t, env.c.SLAs.Delete(sla.UUID))
	must.ErrorIs(t, env.c.SLAs.Delete(sla.UUID), structs.ErrNotFound)
}

func TestProjectManager_Delete_RevokesSLA(t *testing.T) {
	ci.Parallel(t)
	env := newTestEnv(t)

	idp, err := env.c.IdentityProviders.Create(idpSpec())
	must.NoError(t, err)
	g, err := env.c.UserGroups.Create(idp.UUID, &structs.UserGroupSpec{Name: "admins"})
	must.NoError(t, err)
	sla, err := env.c.SLAs.Create(g.UUID, slaSpec("doc-1", "proj-1"))
	must.NoError(t, err)

	must.NoError(t, env.c.Projects.Delete("proj-1"))

	read := env.c.State().ReadTxn()
	defer read.Abort()
	gone, err := read.SLAByUUID(sla.UUID)
	must.NoError(t, err)
	must.Nil(t, gone)
}
