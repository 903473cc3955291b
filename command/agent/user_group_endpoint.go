package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// UserGroupCreateRequest names the owning identity provider for a top-level
// user group create.
type UserGroupCreateRequest struct {
	IdentityProvider string
	UserGroup        *structs.UserGroupSpec
}

// UserGroupExtended is the single-user-group view with its SLAs embedded,
// returned when ?extended=true is set.
type UserGroupExtended struct {
	*structs.UserGroup
	SLAs []*structs.SLA
}

func (s *HTTPServer) UserGroupsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.userGroupList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.userGroupCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) userGroupList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	groups, err := txn.UserGroups(opts)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = make([]*structs.UserGroup, 0)
	}
	return groups, nil
}

func (s *HTTPServer) userGroupCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var args UserGroupCreateRequest
	if err := decodeBody(req, &args); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}
	if args.UserGroup == nil {
		return nil, CodedError(http.StatusBadRequest, "Missing user group payload")
	}

	out, err := s.agent.Catalog().UserGroups.Create(args.IdentityProvider, args.UserGroup)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) UserGroupSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/user-group/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing user group UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.userGroupQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.userGroupUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().UserGroups.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) userGroupQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	g, err := txn.UserGroupByUUID(id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, CodedError(http.StatusNotFound, "User group not found")
	}
	setIndex(resp, g.ModifyIndex)

	if !parseBool(req, "extended") {
		return g, nil
	}

	slas, err := txn.SLAsByUserGroup(g.UUID)
	if err != nil {
		return nil, err
	}
	return &UserGroupExtended{
		UserGroup: g,
		SLAs:      slas,
	}, nil
}

func (s *HTTPServer) userGroupUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.UserGroupUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	force := parseBool(req, "force")
	if force && upd.Name == nil {
		return nil, CodedError(http.StatusBadRequest,
			"Forced updates replace the full user group state and must include name")
	}

	out, err := s.agent.Catalog().UserGroups.Update(id, &upd, force)
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
