package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/fedcloud/catalogd/catalog/structs"
	"github.com/gorilla/handlers"
	"github.com/hashicorp/go-hclog"
)

const (
	// ErrInvalidMethod is used if the HTTP method is not supported
	ErrInvalidMethod = "Invalid method"
)

// HTTPServer is used to wrap an Agent and expose it over an HTTP interface
type HTTPServer struct {
	agent      *Agent
	mux        *http.ServeMux
	listener   net.Listener
	listenerCh chan struct{}
	logger     hclog.Logger
	Addr       string
}

// NewHTTPServer starts a new HTTP server over the agent
func NewHTTPServer(agent *Agent, config *Config) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", config.HTTPAddr())
	if err != nil {
		return nil, fmt.Errorf("failed to start HTTP listener: %v", err)
	}

	mux := http.NewServeMux()

	srv := &HTTPServer{
		agent:      agent,
		mux:        mux,
		listener:   ln,
		listenerCh: make(chan struct{}),
		logger:     agent.logger.Named("http"),
		Addr:       ln.Addr().String(),
	}
	srv.registerHandlers(config.EnableDebug)

	go func() {
		defer close(srv.listenerCh)
		http.Serve(ln, handlers.CompressHandler(mux))
	}()

	return srv, nil
}

// Shutdown is used to shutdown the HTTP server
func (s *HTTPServer) Shutdown() {
	if s != nil {
		s.logger.Debug("shutting down http server")
		s.listener.Close()
		<-s.listenerCh // block until http.Serve has returned.
	}
}

// registerHandlers is used to attach our handlers to the mux
func (s *HTTPServer) registerHandlers(enableDebug bool) {
	s.mux.HandleFunc("/v1/providers", s.wrap(s.ProvidersRequest))
	s.mux.HandleFunc("/v1/provider/", s.wrap(s.ProviderSpecificRequest))

	s.mux.HandleFunc("/v1/regions", s.wrap(s.RegionsRequest))
	s.mux.HandleFunc("/v1/region/", s.wrap(s.RegionSpecificRequest))

	s.mux.HandleFunc("/v1/projects", s.wrap(s.ProjectsRequest))
	s.mux.HandleFunc("/v1/project/", s.wrap(s.ProjectSpecificRequest))

	s.mux.HandleFunc("/v1/services", s.wrap(s.ServicesRequest))
	s.mux.HandleFunc("/v1/service/", s.wrap(s.ServiceSpecificRequest))

	s.mux.HandleFunc("/v1/quotas", s.wrap(s.QuotasRequest))
	s.mux.HandleFunc("/v1/quota/", s.wrap(s.QuotaSpecificRequest))

	s.mux.HandleFunc("/v1/flavors", s.wrap(s.FlavorsRequest))
	s.mux.HandleFunc("/v1/flavor/", s.wrap(s.FlavorSpecificRequest))

	s.mux.HandleFunc("/v1/images", s.wrap(s.ImagesRequest))
	s.mux.HandleFunc("/v1/image/", s.wrap(s.ImageSpecificRequest))

	s.mux.HandleFunc("/v1/networks", s.wrap(s.NetworksRequest))
	s.mux.HandleFunc("/v1/network/", s.wrap(s.NetworkSpecificRequest))

	s.mux.HandleFunc("/v1/identity-providers", s.wrap(s.IdentityProvidersRequest))
	s.mux.HandleFunc("/v1/identity-provider/", s.wrap(s.IdentityProviderSpecificRequest))

	s.mux.HandleFunc("/v1/user-groups", s.wrap(s.UserGroupsRequest))
	s.mux.HandleFunc("/v1/user-group/", s.wrap(s.UserGroupSpecificRequest))

	s.mux.HandleFunc("/v1/slas", s.wrap(s.SLAsRequest))
	s.mux.HandleFunc("/v1/sla/", s.wrap(s.SLASpecificRequest))

	s.mux.HandleFunc("/v1/metrics", s.wrap(s.MetricsRequest))

	if enableDebug {
		s.mux.HandleFunc("/debug/pprof/", pprof.Index)
		s.mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		s.mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		s.mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		s.mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

// HTTPCodedError is used to provide the HTTP error code
type HTTPCodedError interface {
	error
	Code() int
}

func CodedError(c int, s string) HTTPCodedError {
	return &codedError{s, c}
}

type codedError struct {
	s    string
	code int
}

func (e *codedError) Error() string {
	return e.s
}

func (e *codedError) Code() int {
	return e.code
}

// errCode maps manager errors onto HTTP status codes.
func errCode(err error) int {
	if coded, ok := err.(HTTPCodedError); ok {
		return coded.Code()
	}
	switch {
	case errors.Is(err, structs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, structs.ErrDuplicateEndpoint),
		errors.Is(err, structs.ErrUnknownProject),
		errors.Is(err, structs.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// wrap is used to wrap functions to make them more convenient
func (s *HTTPServer) wrap(handler func(resp http.ResponseWriter, req *http.Request) (interface{}, error)) func(resp http.ResponseWriter, req *http.Request) {
	f := func(resp http.ResponseWriter, req *http.Request) {
		reqURL := req.URL.String()
		start := time.Now()
		defer func() {
			s.logger.Debug("request complete", "method", req.Method, "path", reqURL, "duration", time.Since(start))
		}()
		obj, err := handler(resp, req)

		if err != nil {
			code := errCode(err)
			s.logger.Error("request failed", "method", req.Method, "path", reqURL, "error", err, "code", code)
			resp.WriteHeader(code)
			resp.Write([]byte(err.Error()))
			return
		}

		if obj != nil {
			var buf []byte
			if prettyPrint(req) {
				buf, err = json.MarshalIndent(obj, "", "  ")
				buf = append(buf, '\n')
			} else {
				buf, err = json.Marshal(obj)
			}
			if err != nil {
				resp.WriteHeader(http.StatusInternalServerError)
				resp.Write([]byte(err.Error()))
				return
			}
			resp.Header().Set("Content-Type", "application/json")
			resp.Write(buf)
		}
	}
	return f
}

func prettyPrint(req *http.Request) bool {
	v, ok := req.URL.Query()["pretty"]
	return ok && len(v) > 0 && (len(v[0]) == 0 || v[0] != "0")
}

// decodeBody is used to decode a JSON request body
func decodeBody(req *http.Request, out interface{}) error {
	dec := json.NewDecoder(req.Body)
	return dec.Decode(&out)
}

// setIndex is used to set the index response header
func setIndex(resp http.ResponseWriter, index uint64) {
	resp.Header().Set("X-Catalogd-Index", strconv.FormatUint(index, 10))
}

// parseQueryOptions reads the shared list parameters. A malformed value is
// reported as a 400.
func parseQueryOptions(req *http.Request) (structs.QueryOptions, error) {
	var opts structs.QueryOptions
	query := req.URL.Query()

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			return opts, CodedError(http.StatusBadRequest, fmt.Sprintf("Invalid limit: %q", v))
		}
		opts.Limit = limit
	}
	if v := query.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			return opts, CodedError(http.StatusBadRequest, fmt.Sprintf("Invalid skip: %q", v))
		}
		opts.Skip = skip
	}
	opts.Sort = query.Get("sort")

	return opts, nil
}

// parseBool reads a boolean query parameter such as ?force= or ?extended=.
func parseBool(req *http.Request, param string) bool {
	v := req.URL.Query().Get(param)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
