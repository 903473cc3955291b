package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/fedcloud/catalogd/ci"
	"github.com/fedcloud/catalogd/helper/pointer"
	"github.com/fedcloud/catalogd/helper/testlog"
	"github.com/stretchr/testify/require"
)

// testServer is an agent with its HTTP server bound to an ephemeral port on
// the loopback interface.
type testServer struct {
	t     *testing.T
	agent *Agent
	srv   *HTTPServer
}

func makeHTTPServer(t *testing.T) *testServer {
	conf := DevConfig()
	conf.HTTPPort = 0

	a, err := NewAgent(conf, testlog.HCLogger(t))
	require.NoError(t, err)

	srv, err := NewHTTPServer(a, conf)
	require.NoError(t, err)

	t.Cleanup(func() {
		srv.Shutdown()
		a.Shutdown()
	})

	return &testServer{t: t, agent: a, srv: srv}
}

func (s *testServer) url(path string) string {
	return fmt.Sprintf("http://%s%s", s.srv.Addr, path)
}

// request issues an HTTP request with body marshalled to JSON and returns the
// response alongside its consumed body.
func (s *testServer) request(method, path string, body interface{}) (*http.Response, []byte) {
	s.t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.url(path), buf)
	require.NoError(s.t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	return resp, out
}

// createProvider posts a provider with one region and one project and returns
// the created entities.
func (s *testServer) createProvider(t *testing.T) (*structs.Provider, *structs.Region, *structs.Project) {
	resp, body := s.request(http.MethodPost, "/v1/providers", &structs.ProviderSpec{
		Name: "site-a",
		Type: structs.ProviderTypeOpenStack,
		Regions: []*structs.RegionSpec{
			{Name: "region-1"},
		},
		Projects: []*structs.ProjectSpec{
			{UUID: "proj-1", Name: "one"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var p structs.Provider
	require.NoError(t, json.Unmarshal(body, &p))

	read := s.agent.State().ReadTxn()
	defer read.Abort()
	regions, err := read.RegionsByProvider(p.UUID)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	proj, err := read.ProjectByUUID("proj-1")
	require.NoError(t, err)

	return &p, regions[0], proj
}

func TestHTTPServer_ProviderCRUD(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	p, _, _ := s.createProvider(t)
	require.NotEmpty(t, p.UUID)
	require.Equal(t, structs.ProviderStatusActive, p.Status)

	// List returns stubs.
	resp, body := s.request(http.MethodGet, "/v1/providers", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stubs []*structs.ProviderListStub
	require.NoError(t, json.Unmarshal(body, &stubs))
	require.Len(t, stubs, 1)
	require.Equal(t, p.UUID, stubs[0].UUID)

	// Single GET carries the index header.
	resp, body = s.request(http.MethodGet, "/v1/provider/"+p.UUID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Catalogd-Index"))
	var out structs.Provider
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, p.Name, out.Name)

	// Unknown UUID is a 404.
	resp, _ = s.request(http.MethodGet, "/v1/provider/nope", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// A patch that changes something is a 200.
	resp, body = s.request(http.MethodPatch, "/v1/provider/"+p.UUID, &structs.ProviderUpdate{
		Status: pointer.Of(structs.ProviderStatusMaintenance),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	// The identical patch reports 304.
	resp, _ = s.request(http.MethodPatch, "/v1/provider/"+p.UUID, &structs.ProviderUpdate{
		Status: pointer.Of(structs.ProviderStatusMaintenance),
	})
	require.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp, _ = s.request(http.MethodDelete, "/v1/provider/"+p.UUID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.request(http.MethodGet, "/v1/provider/"+p.UUID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_ProviderExtended(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	p, region, _ := s.createProvider(t)

	resp, body := s.request(http.MethodGet, "/v1/provider/"+p.UUID+"?extended=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ProviderExtended
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Regions, 1)
	require.Equal(t, region.UUID, out.Regions[0].UUID)
	require.Len(t, out.Projects, 1)
}

func TestHTTPServer_ServiceResubmission(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	_, region, _ := s.createProvider(t)

	spec := &structs.ServiceSpec{
		Type:     structs.ServiceTypeBlockStorage,
		Name:     structs.ServiceNameOpenStackCinder,
		Endpoint: "https://cinder.example.org/v3",
		Region:   region.UUID,
		Quotas: []*structs.QuotaSpec{
			{Gigabytes: pointer.Of(int64(10)), Project: "proj-1"},
		},
	}

	resp, body := s.request(http.MethodPost, "/v1/services", spec)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var svc structs.Service
	require.NoError(t, json.Unmarshal(body, &svc))

	// Resubmitting the same full state is a 304.
	resp, _ = s.request(http.MethodPut, "/v1/service/"+svc.UUID+"?force=true", spec.ToUpdate())
	require.Equal(t, http.StatusNotModified, resp.StatusCode)

	// A bumped quota limit makes it a 200 and keeps a single quota row.
	spec.Quotas[0].Gigabytes = pointer.Of(int64(20))
	resp, body = s.request(http.MethodPut, "/v1/service/"+svc.UUID+"?force=true", spec.ToUpdate())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.request(http.MethodGet, "/v1/service/"+svc.UUID+"?extended=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out ServiceExtended
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Quotas, 1)
	require.Equal(t, int64(20), *out.Quotas[0].Gigabytes)
}

func TestHTTPServer_ServiceDuplicateEndpoint(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	_, region, _ := s.createProvider(t)

	spec := &structs.ServiceSpec{
		Type:     structs.ServiceTypeBlockStorage,
		Name:     structs.ServiceNameOpenStackCinder,
		Endpoint: "https://cinder.example.org/v3",
		Region:   region.UUID,
	}

	resp, _ := s.request(http.MethodPost, "/v1/services", spec)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.request(http.MethodPost, "/v1/services", spec)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(body), "endpoint")
}

func TestHTTPServer_ServiceValidationError(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	_, region, _ := s.createProvider(t)

	// Field errors from validation are client errors, not 5xx.
	resp, body := s.request(http.MethodPost, "/v1/services", &structs.ServiceSpec{
		Type:   structs.ServiceTypeBlockStorage,
		Name:   structs.ServiceNameOpenStackCinder,
		Region: region.UUID,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))
	require.Contains(t, string(body), "endpoint")
}

func TestHTTPServer_ServiceForcedUpdateRequiresScalars(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	_, region, _ := s.createProvider(t)

	resp, body := s.request(http.MethodPost, "/v1/services", &structs.ServiceSpec{
		Type:     structs.ServiceTypeBlockStorage,
		Name:     structs.ServiceNameOpenStackCinder,
		Endpoint: "https://cinder.example.org/v3",
		Region:   region.UUID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var svc structs.Service
	require.NoError(t, json.Unmarshal(body, &svc))

	// A forced update without the required scalars would zero them; it is
	// rejected up front.
	resp, body = s.request(http.MethodPut, "/v1/service/"+svc.UUID+"?force=true", &structs.ServiceUpdate{
		Description: pointer.Of("only a description"),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(body), "name and endpoint")

	// The same partial body without force is an ordinary patch.
	resp, _ = s.request(http.MethodPatch, "/v1/service/"+svc.UUID, &structs.ServiceUpdate{
		Description: pointer.Of("only a description"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_QuotaCreate(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	_, region, _ := s.createProvider(t)

	resp, body := s.request(http.MethodPost, "/v1/services", &structs.ServiceSpec{
		Type:     structs.ServiceTypeBlockStorage,
		Name:     structs.ServiceNameOpenStackCinder,
		Endpoint: "https://cinder.example.org/v3",
		Region:   region.UUID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var svc structs.Service
	require.NoError(t, json.Unmarshal(body, &svc))

	resp, body = s.request(http.MethodPost, "/v1/quotas", &QuotaCreateRequest{
		Service: svc.UUID,
		Quota: &structs.QuotaSpec{
			Gigabytes: pointer.Of(int64(10)),
			Project:   "proj-1",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var q structs.Quota
	require.NoError(t, json.Unmarshal(body, &q))
	require.Equal(t, "proj-1", q.ProjectID)

	// Missing payload is rejected.
	resp, _ = s.request(http.MethodPost, "/v1/quotas", &QuotaCreateRequest{Service: svc.UUID})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown project on the direct create path is a 400, not a skip.
	resp, _ = s.request(http.MethodPost, "/v1/quotas", &QuotaCreateRequest{
		Service: svc.UUID,
		Quota:   &structs.QuotaSpec{Project: "proj-x"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_IdentityWingCRUD(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	s.createProvider(t)

	resp, body := s.request(http.MethodPost, "/v1/identity-providers", &structs.IdentityProviderSpec{
		Endpoint:   "https://aai.example.org",
		GroupClaim: "eduperson_entitlement",
		UserGroups: []*structs.UserGroupSpec{
			{Name: "admins"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var idp structs.IdentityProvider
	require.NoError(t, json.Unmarshal(body, &idp))
	require.NotEmpty(t, resp.Header.Get("X-Catalogd-Index"))

	// Extended view embeds the user groups.
	resp, body = s.request(http.MethodGet, "/v1/identity-provider/"+idp.UUID+"?extended=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ext IdentityProviderExtended
	require.NoError(t, json.Unmarshal(body, &ext))
	require.Len(t, ext.UserGroups, 1)
	group := ext.UserGroups[0]

	// Missing group claim fails validation as a client error.
	resp, _ = s.request(http.MethodPost, "/v1/identity-providers", &structs.IdentityProviderSpec{
		Endpoint: "https://other.example.org",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	resp, body = s.request(http.MethodPost, "/v1/slas", &SLACreateRequest{
		UserGroup: group.UUID,
		SLA: &structs.SLASpec{
			DocUUID:   "doc-1",
			StartDate: start,
			EndDate:   start.AddDate(1, 0, 0),
			Project:   "proj-1",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var sla structs.SLA
	require.NoError(t, json.Unmarshal(body, &sla))
	require.Equal(t, "proj-1", sla.ProjectID)

	// Identical patch reports 304.
	resp, _ = s.request(http.MethodPatch, "/v1/sla/"+sla.UUID, &structs.SLAUpdate{
		DocUUID: pointer.Of("doc-1"),
	})
	require.Equal(t, http.StatusNotModified, resp.StatusCode)

	// Missing SLA payload is rejected.
	resp, _ = s.request(http.MethodPost, "/v1/slas", &SLACreateRequest{UserGroup: group.UUID})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Deleting the identity provider cascades to the group and its SLA.
	resp, _ = s.request(http.MethodDelete, "/v1/identity-provider/"+idp.UUID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.request(http.MethodGet, "/v1/user-group/"+group.UUID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.request(http.MethodGet, "/v1/sla/"+sla.UUID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHTTPServer_QueryOptions(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	for _, path := range []string{
		"/v1/providers?limit=bogus",
		"/v1/providers?limit=-1",
		"/v1/providers?skip=oops",
		"/v1/providers?skip=-2",
	} {
		resp, _ := s.request(http.MethodGet, path, nil)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}

	resp, _ := s.request(http.MethodGet, "/v1/providers?sort=nope", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHTTPServer_InvalidMethod(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	resp, _ := s.request(http.MethodDelete, "/v1/providers", nil)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = s.request(http.MethodDelete, "/v1/metrics", nil)
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHTTPServer_MissingUUID(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	resp, _ := s.request(http.MethodGet, "/v1/provider/", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_Metrics(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	resp, body := s.request(http.MethodGet, "/v1/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body)
}

func TestHTTPServer_PrettyPrint(t *testing.T) {
	ci.Parallel(t)
	s := makeHTTPServer(t)

	s.createProvider(t)

	_, body := s.request(http.MethodGet, "/v1/providers?pretty", nil)
	require.Contains(t, string(body), "\n")
}
