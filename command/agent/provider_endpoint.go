package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// ProviderExtended is the single-provider view with its child entities
// embedded, returned when ?extended=true is set.
type ProviderExtended struct {
	*structs.Provider
	Regions  []*structs.Region
	Projects []*structs.Project
}

func (s *HTTPServer) ProvidersRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.providerList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.providerCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) providerList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	providers, err := txn.Providers(opts)
	if err != nil {
		return nil, err
	}
	out := make([]*structs.ProviderListStub, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Stub())
	}
	return out, nil
}

func (s *HTTPServer) providerCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var spec structs.ProviderSpec
	if err := decodeBody(req, &spec); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Providers.Create(&spec)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) ProviderSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/provider/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing provider UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.providerQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.providerUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Providers.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) providerQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	p, err := txn.ProviderByUUID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, CodedError(http.StatusNotFound, "Provider not found")
	}
	setIndex(resp, p.ModifyIndex)

	if !parseBool(req, "extended") {
		return p, nil
	}

	regions, err := txn.RegionsByProvider(p.UUID)
	if err != nil {
		return nil, err
	}
	projects, err := txn.ProjectsByProvider(p.UUID)
	if err != nil {
		return nil, err
	}
	return &ProviderExtended{
		Provider: p,
		Regions:  regions,
		Projects: projects,
	}, nil
}

func (s *HTTPServer) providerUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.ProviderUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Providers.Update(id, &upd, parseBool(req, "force"))
	if err != nil {
		return nil, err
	}
	if out == nil {
		resp.WriteHeader(http.StatusNotModified)
		return nil, nil
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}
