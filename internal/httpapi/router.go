package httpapi

import "github.com/AutoCookies/atomkv/internal/telemetry"

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")
	s.router.HandleFunc("/insights", s.handleInsights).Methods("GET")
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.Handle("/debug/metrics", telemetry.Handler()).Methods("GET")
}
