package agent

import (
	"net/http"
	"strings"

	"github.com/fedcloud/catalogd/catalog/structs"
)

// IdentityProviderExtended is the single-identity-provider view with its user
// groups embedded, returned when ?extended=true is set.
type IdentityProviderExtended struct {
	*structs.IdentityProvider
	UserGroups []*structs.UserGroup
}

func (s *HTTPServer) IdentityProvidersRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	switch req.Method {
	case http.MethodGet:
		return s.identityProviderList(resp, req)
	case http.MethodPut, http.MethodPost:
		return s.identityProviderCreate(resp, req)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) identityProviderList(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	opts, err := parseQueryOptions(req)
	if err != nil {
		return nil, err
	}

	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	idps, err := txn.IdentityProviders(opts)
	if err != nil {
		return nil, err
	}
	if idps == nil {
		idps = make([]*structs.IdentityProvider, 0)
	}
	return idps, nil
}

func (s *HTTPServer) identityProviderCreate(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	var spec structs.IdentityProviderSpec
	if err := decodeBody(req, &spec); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	out, err := s.agent.Catalog().IdentityProviders.Create(&spec)
	if err != nil {
		return nil, err
	}
	setIndex(resp, out.ModifyIndex)
	return out, nil
}

func (s *HTTPServer) IdentityProviderSpecificRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	id := strings.TrimPrefix(req.URL.Path, "/v1/identity-provider/")
	if id == "" {
		return nil, CodedError(http.StatusBadRequest, "Missing identity provider UUID")
	}

	switch req.Method {
	case http.MethodGet:
		return s.identityProviderQuery(resp, req, id)
	case http.MethodPut, http.MethodPost, http.MethodPatch:
		return s.identityProviderUpdate(resp, req, id)
	case http.MethodDelete:
		return nil, s.agent.Catalog().IdentityProviders.Delete(id)
	default:
		return nil, CodedError(405, ErrInvalidMethod)
	}
}

func (s *HTTPServer) identityProviderQuery(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	txn := s.agent.State().ReadTxn()
	defer txn.Abort()

	idp, err := txn.IdentityProviderByUUID(id)
	if err != nil {
		return nil, err
	}
	if idp == nil {
		return nil, CodedError(http.StatusNotFound, "Identity provider not found")
	}
	setIndex(resp, idp.ModifyIndex)

	if !parseBool(req, "extended") {
		return idp, nil
	}

	groups, err := txn.UserGroupsByIdentityProvider(idp.UUID)
	if err != nil {
		return nil, err
	}
	return &IdentityProviderExtended{
		IdentityProvider: idp,
		UserGroups:       groups,
	}, nil
}

func (s *HTTPServer) identityProviderUpdate(resp http.ResponseWriter, req *http.Request, id string) (interface{}, error) {
	var upd structs.IdentityProviderUpdate
	if err := decodeBody(req, &upd); err != nil {
		return nil, CodedError(http.StatusBadRequest, err.Error())
	}

	force := parseBool(req, "force")
	if force && (upd.Endpoint == nil || upd.GroupClaim == nil) {
		return nil, CodedError(http.StatusBadRequest,
			"Forced updates replace the full identity provider state and must include endpoint and group claim")
	}

	out, err := s.agent.Catalog().IdentityProviders.Update(id, &upd, force)
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
