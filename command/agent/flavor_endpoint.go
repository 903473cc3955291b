package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// FlavorCreateRequest names the owning service for a top-level flavor create.
type FlavorCreateRequest struct {
	Service string
	Flavor  *structs.FlavorSpec
}

func (s *HTTPServer) FlavorsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.flavorList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.flavorCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) flavorList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	flavors, err := txn.Flavors(opts)
	if err != nil {
		return nil, err
	}
	out := make([]*structs.FlavorListStub, 0, len(flavors))
	for _, f := range flavors {
		out = append(out, f.Stub())
	}
	return out, nil
}

func (s *HTTPServer) flavorCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var args FlavorCreateRequest
	if err := decodeBody(req, &args); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}
	if args.Flavor == nil {
		return nil, CodedError(http.StatusBadRequest, "Missing flavor payload")
	}

	out, err := s.agent.Catalog().Flavors.Create(args.Service, args.Flavor)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) FlavorSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/flavor/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing flavor UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.flavorQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.flavorUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Flavors.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) flavorQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	f, err := txn.FlavorByUUID(id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, CodedError(http.StatusNotFound, "Flavor not found")
	}
	setIndex(resp, f.ModifyIndex)
	return f, nil
}

func (s *HTTPServer) flavorUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.FlavorUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Flavors.Update(id, &upd, parseBool(req, "force"))
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
