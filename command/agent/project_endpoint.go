package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// ProjectExtended is the single-project view with the entities linked to the
// project embedded, returned when ?extended=true is set.
type ProjectExtended struct {
	*structs.Project
	Quotas   []*structs.Quota
	Flavors  []*structs.Flavor
	Images   []*structs.Image
	Networks []*structs.Network
}

func (s *HTTPServer) ProjectsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.projectList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.projectCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) projectList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	projects, err := txn.Projects(opts)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = make([]*structs.Project, 0)
	}
	return projects, nil
}

func (s *HTTPServer) projectCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var spec structs.ProjectSpec
	if err := decodeBody(req, &spec); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Projects.Create(&spec)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) ProjectSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/project/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing project UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.projectQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.projectUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().Projects.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) projectQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	p, err := txn.ProjectByUUID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, CodedError(http.StatusNotFound, "Project not found")
	}
	setIndex(resp, p.ModifyIndex)

	if !parseBool(req, "extended") {
		return p, nil
	}

	quotas, err := txn.QuotasByProject(p.UUID)
	if err != nil {
		return nil, err
	}
	flavors, err := txn.FlavorsByProject(p.UUID)
	if err != nil {
		return nil, err
	}
	images, err := txn.ImagesByProject(p.UUID)
	if err != nil {
		return nil, err
	}
	networks, err := txn.NetworksByProject(p.UUID)
	if err != nil {
		return nil, err
	}
	return &ProjectExtended{
		Project:  p,
		Quotas:   quotas,
		Flavors:  flavors,
		Images:   images,
		Networks: networks,
	}, nil
}

func (s *HTTPServer) projectUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.ProjectUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().Projects.Update(id, &upd, parseBool(req, "force"))
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
