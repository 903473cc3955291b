package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// RegionExtended is the single-region view with its services embedded,
// returned when ?extended=true is set.
type RegionExtended struct {
	*structs.Region
	Services []*structs.Service
}

func (s *HTTPServer) RegionsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.regionList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.regionCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) regionList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	regions, err := txn.Regions(opts)
	if err != nil {
		return nil, err
	}
	if regions == nil {
		regions = make([]*structs.Region, 0)
	}
	return regions, nil
}

func (s *HTTPServer) regionCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var spec structs.RegionSpec
	if err := decodeBody(req, &spec); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Regions.Create(&spec)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) RegionSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/region/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing region UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.regionQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.regionUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Regions.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) regionQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	r, err := txn.RegionByUUID(id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, CodedError(http.StatusNotFound, "Region not found")
	}
	setIndex(resp, r.ModifyIndex)

	if !parseBool(req, "extended") {
		return r, nil
	}

	services, err := txn.ServicesByRegion(r.UUID)
	if err != nil {
		return nil, err
	}
	return &RegionExtended{
		Region:   r,
		Services: services,
	}, nil
}

func (s *HTTPServer) regionUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.RegionUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Regions.Update(id, &upd, parseBool(req, "force"))
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
