package httpapi

import "net/http"

// healthz reports process liveness.
func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	toJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyz reports storage readiness when the backend exposes a probe.
func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ready(r.Context()); err != nil {
			toJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	toJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
