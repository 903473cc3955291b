package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// NetworkCreateRequest names the owning service for a top-level network
// create.
type NetworkCreateRequest struct {
	Service string
	Network *structs.NetworkSpec
}

func (s *HTTPServer) NetworksRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.networkList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.networkCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) networkList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	networks, err := txn.Networks(opts)
	if err != nil {
		return nil, err
	}
	if networks == nil {
		networks = make([]*structs.Network, 0)
	}
	return networks, nil
}

func (s *HTTPServer) networkCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var args NetworkCreateRequest
	if err := decodeBody(req, &args); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}
	if args.Network == nil {
		return nil, CodedError(http.StatusBadRequest, "Missing network payload")
	}

	out, err := s.agent.Catalog().Networks.Create(args.Service, args.Network)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) NetworkSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/network/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing network UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.networkQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.networkUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Networks.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) networkQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	n, err := txn.NetworkByUUID(id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, CodedError(http.StatusNotFound, "Network not found")
	}
	setIndex(resp, n.ModifyIndex)
	return n, nil
}

func (s *HTTPServer) networkUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.NetworkUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Networks.Update(id, &upd, parseBool(req, "force"))
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
