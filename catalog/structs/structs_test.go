package structs

import (
	"testing"

	"github.com/fedcloud/catalogd/ci"
	"github.com/fedcloud/catalogd/helper/pointer"
	"github.com/shoenig/test/must"
)

func TestQueryOptions_SortField(t *testing.T) {
	ci.Parallel(t)

	cases := []struct {
		sort       string
		field      string
		descending bool
	}{
		{"", "", false},
		{"name", "name", false},
		{"-name", "name", true},
		{"name_desc", "name", true},
		{"name_asc", "name", false},
		{"-uuid", "uuid", true},
	}
	for _, tc := range cases {
		field, descending := QueryOptions{Sort: tc.sort}.SortField()
		must.Eq(t, tc.field, field)
		must.Eq(t, tc.descending, descending)
	}
}

func TestProvider_ApplyUpdate(t *testing.T) {
	ci.Parallel(t)

	p := &Provider{
		UUID:        "abc",
		Name:        "site-a",
		Type:        ProviderTypeOpenStack,
		Status:      ProviderStatusActive,
		Description: "keep me",
	}

	// Empty patch changes nothing.
	must.False(t, p.ApplyUpdate(&ProviderUpdate{}, false))

	// Same value changes nothing.
	must.False(t, p.ApplyUpdate(&ProviderUpdate{Name: pointer.Of("site-a")}, false))

	// Partial patch leaves unsubmitted fields alone.
	changed := p.ApplyUpdate(&ProviderUpdate{Name: pointer.Of("site-b")}, false)
	must.True(t, changed)
	must.Eq(t, "site-b", p.Name)
	must.Eq(t, "keep me", p.Description)

	// Forced patch resets unsubmitted fields to their zero values.
	changed = p.ApplyUpdate(&ProviderUpdate{
		Name: pointer.Of("site-b"),
		Type: pointer.Of(ProviderTypeOpenStack),
	}, true)
	must.True(t, changed)
	must.Eq(t, "", p.Description)
	must.Eq(t, ProviderStatus(""), p.Status)
}

func TestQuota_ApplyUpdate(t *testing.T) {
	ci.Parallel(t)

	q := &Quota{
		UUID:      "q1",
		Type:      QuotaTypeBlockStorage,
		Gigabytes: pointer.Of(int64(10)),
		Volumes:   pointer.Of(int64(5)),
		ServiceID: "s1",
		ProjectID: "p1",
	}

	// Limit bump.
	changed := q.ApplyUpdate(&QuotaUpdate{Gigabytes: pointer.Of(int64(20))}, false)
	must.True(t, changed)
	must.Eq(t, int64(20), *q.Gigabytes)
	must.Eq(t, int64(5), *q.Volumes)

	// Same value again is a no-op.
	must.False(t, q.ApplyUpdate(&QuotaUpdate{Gigabytes: pointer.Of(int64(20))}, false))

	// Force clears limits the payload omits.
	changed = q.ApplyUpdate(&QuotaUpdate{Gigabytes: pointer.Of(int64(20))}, true)
	must.True(t, changed)
	must.Nil(t, q.Volumes)
	must.Eq(t, int64(20), *q.Gigabytes)
}

func TestQuotaSpec_ToUpdate(t *testing.T) {
	ci.Parallel(t)

	spec := &QuotaSpec{
		Gigabytes: pointer.Of(int64(10)),
		PerUser:   true,
		Project:   "p1",
	}
	upd := spec.ToUpdate()

	// Every submittable field is marked as submitted.
	must.NotNil(t, upd.Description)
	must.NotNil(t, upd.PerUser)
	must.True(t, *upd.PerUser)
	must.NotNil(t, upd.Project)
	must.Eq(t, "p1", *upd.Project)
	must.Eq(t, int64(10), *upd.Gigabytes)
}

func TestQuota_Copy(t *testing.T) {
	ci.Parallel(t)

	q := &Quota{
		UUID:      "q1",
		Gigabytes: pointer.Of(int64(10)),
	}
	c := q.Copy()
	*c.Gigabytes = 99
	c.UUID = "q2"

	must.Eq(t, int64(10), *q.Gigabytes)
	must.Eq(t, "q1", q.UUID)
}

func TestService_Validate(t *testing.T) {
	ci.Parallel(t)

	svc := &Service{}
	err := svc.Validate()
	must.Error(t, err)
	must.ErrorIs(t, err, ErrValidation)

	svc = &Service{
		UUID:     "s1",
		Type:     ServiceTypeCompute,
		Name:     ServiceNameOpenStackNova,
		Endpoint: "https://compute.example.org",
		RegionID: "r1",
	}
	must.NoError(t, svc.Validate())

	svc.Type = ServiceType("object-store")
	must.Error(t, svc.Validate())
}

func TestServiceType_HasQuotas(t *testing.T) {
	ci.Parallel(t)

	must.True(t, ServiceTypeBlockStorage.HasQuotas())
	must.True(t, ServiceTypeCompute.HasQuotas())
	must.True(t, ServiceTypeNetwork.HasQuotas())
	must.False(t, ServiceTypeIdentity.HasQuotas())
}

func TestQuotaTypeForService(t *testing.T) {
	ci.Parallel(t)

	qt, ok := QuotaTypeForService(ServiceTypeCompute)
	must.True(t, ok)
	must.Eq(t, QuotaTypeCompute, qt)

	_, ok = QuotaTypeForService(ServiceTypeIdentity)
	must.False(t, ok)
}

func TestImage_ApplyUpdate_Tags(t *testing.T) {
	ci.Parallel(t)

	i := &Image{
		UUID: "i1",
		Name: "ubuntu",
		Tags: []string{"a", "b"},
	}

	// Same tags in another order compare equal as sets.
	must.False(t, i.ApplyUpdate(&ImageUpdate{Tags: []string{"b", "a"}}, false))

	changed := i.ApplyUpdate(&ImageUpdate{Tags: []string{"a"}}, false)
	must.True(t, changed)
	must.Eq(t, []string{"a"}, i.Tags)
}

func TestFlavor_Copy(t *testing.T) {
	ci.Parallel(t)

	f := &Flavor{
		UUID:       "f1",
		Name:       "m1.small",
		GPUModel:   pointer.Of("a100"),
		ServiceIDs: []string{"s1"},
	}
	c := f.Copy()
	c.ServiceIDs[0] = "s2"
	*c.GPUModel = "h100"

	must.Eq(t, "s1", f.ServiceIDs[0])
	must.Eq(t, "a100", *f.GPUModel)
}
