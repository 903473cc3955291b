package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// SLACreateRequest names the granted user group for a top-level SLA create.
type SLACreateRequest struct {
	UserGroup string
	SLA       *structs.SLASpec
}

func (s *HTTPServer) SLAsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.slaList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.slaCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) slaList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	slas, err := txn.SLAs(opts)
	if err != nil {
		return nil, err
	}
	if slas == nil {
		slas = make([]*structs.SLA, 0)
	}
	return slas, nil
}

func (s *HTTPServer) slaCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var args SLACreateRequest
	if err := decodeBody(req, &args); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}
	if args.SLA == nil {
		return nil, CodedError(http.StatusBadRequest, "Missing SLA payload")
	}

	out, err := s.agent.Catalog().SLAs.Create(args.UserGroup, args.SLA)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) SLASpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/sla/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing SLA UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.slaQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.slaUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().SLAs.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) slaQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	sla, err := txn.SLAByUUID(id)
	if err != nil {
		return nil, err
	}
	if sla == nil {
		return nil, CodedError(http.StatusNotFound, "SLA not found")
	}
	setIndex(resp, sla.ModifyIndex)
	return sla, nil
}

func (s *HTTPServer) slaUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.SLAUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().SLAs.Update(id, &upd, parseBool(req, "force"))
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
