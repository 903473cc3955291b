package agent

import (
	"net/http"
)

// MetricsRequest returns the aggregated telemetry of the in-memory sink.
func (s *HTTPServer) MetricsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != http.MethodGet {
		return nil, CodedError(405, ErrInvalidMethod)
	}
	return s.agent.InmemSink().DisplayMetrics(resp, req)
}
