package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// ServiceExtended is the single-service view with every child collection the
// service type owns embedded, returned when ?extended=true is set.
type ServiceExtended struct {
	*structs.Service
	Quotas   []*structs.Quota
	Flavors  []*structs.Flavor
	Images   []*structs.Image
	Networks []*structs.Network
}

func (s *HTTPServer) ServicesRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.serviceList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.serviceCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) serviceList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	services, err := txn.Services(opts)
	if err != nil {
		return nil, err
	}
	out := make([]*structs.ServiceListStub, 0, len(services))
	for _, svc := range services {
		out = append(out, svc.Stub())
	}
	return out, nil
}

func (s *HTTPServer) serviceCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var spec structs.ServiceSpec
	if err := decodeBody(req, &spec); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Services.Create(&spec)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) ServiceSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/service/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing service UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.serviceQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.serviceUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Services.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) serviceQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	svc, err := txn.ServiceByUUID(id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, CodedError(http.StatusNotFound, "Service not found")
	}
	setIndex(resp, svc.ModifyIndex)

	if !parseBool(req, "extended") {
		return svc, nil
	}

	out := &ServiceExtended{Service: svc}
	if svc.Type.HasQuotas() {
		if out.Quotas, err = txn.QuotasByService(svc.UUID); err != nil {
			return nil, err
		}
	}
	if svc.Type == structs.ServiceTypeCompute {
		if out.Flavors, err = txn.FlavorsByService(svc.UUID); err != nil {
			return nil, err
		}
		if out.Images, err = txn.ImagesByService(svc.UUID); err != nil {
			return nil, err
		}
	}
	if svc.Type == structs.ServiceTypeNetwork {
		if out.Networks, err = txn.NetworksByService(svc.UUID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// serviceUpdate patches a service. A forced update is a full-state
// resubmission: unsubmitted scalars are reset to their zero values, so the
// payload must carry at least the required ones.
func (s *HTTPServer) serviceUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.ServiceUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	force := parseBool(req, "force")
	if force && (upd.Name == nil || upd.Endpoint == nil) {
		return nil, CodedError(http.StatusBadRequest,
			"Forced updates replace the full service state and must include name and endpoint")
	}

	out, err := s.agent.Catalog().Services.Update(id, &upd, force)
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
