package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// QuotaCreateRequest names the owning service for a top-level quota create.
type QuotaCreateRequest struct {
	Service string
	Quota   *structs.QuotaSpec
}

func (s *HTTPServer) QuotasRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.quotaList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.quotaCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) quotaList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	quotas, err := txn.Quotas(opts)
	if err != nil {
		return nil, err
	}
	if quotas == nil {
		quotas = make([]*structs.Quota, 0)
	}
	return quotas, nil
}

func (s *HTTPServer) quotaCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var args QuotaCreateRequest
	if err := decodeBody(req, &args); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}
	if args.Quota == nil {
		return nil, CodedError(http.StatusBadRequest, "Missing quota payload")
	}

	out, err := s.agent.Catalog().Quotas.Create(args.Service, args.Quota)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) QuotaSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/quota/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing quota UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.quotaQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.quotaUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Quotas.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) quotaQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	q, err := txn.QuotaByUUID(id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, CodedError(http.StatusNotFound, "Quota not found")
	}
	setIndex(resp, q.ModifyIndex)
	return q, nil
}

func (s *HTTPServer) quotaUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.QuotaUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Quotas.Update(id, &upd, parseBool(req, "force"))
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
