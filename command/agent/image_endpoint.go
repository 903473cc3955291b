package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// ImageCreateRequest names the owning service for a top-level image create.
type ImageCreateRequest struct {
	Service string
	Image   *structs.ImageSpec
}

func (s *HTTPServer) ImagesRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.imageList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.imageCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) imageList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	images, err := txn.Images(opts)
	if err != nil {
		return nil, err
	}
	out := make([]*structs.ImageListStub, 0, len(images))
	for _, i := range images {
		out = append(out, i.Stub())
	}
	return out, nil
}

func (s *HTTPServer) imageCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var args ImageCreateRequest
	if err := decodeBody(req, &args); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}
	if args.Image == nil {
		return nil, CodedError(http.StatusBadRequest, "Missing image payload")
	}

	out, err := s.agent.Catalog().Images.Create(args.Service, args.Image)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) ImageSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/image/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing image UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.imageQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.imageUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Images.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) imageQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	i, err := txn.ImageByUUID(id)
	if err != nil {
		return nil, err
	}
	if i == nil {
		return nil, CodedError(http.StatusNotFound, "Image not found")
	}
	setIndex(resp, i.ModifyIndex)
	return i, nil
}

func (s *HTTPServer) imageUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.ImageUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Images.Update(id, &upd, parseBool(req, "force"))
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
