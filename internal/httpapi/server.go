// Package httpapi is the HTTP adapter: spec.md §6's /metrics and
// /insights endpoints, plus a health check and a Prometheus exposition
// route carried over as ambient stack. Routing and middleware follow
// the teacher's internal/adapter/http package (gorilla/mux Server
// wrapping a router, a CORS middleware applied uniformly).
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/AutoCookies/atomkv/internal/storekv"
)

// Store is the subset of storekv.Store the HTTP adapter reads.
type Store interface {
	Stats() storekv.Stats
	Snapshot() map[string][]byte
	Count() int64
}

type Server struct {
	store  Store
	router *mux.Router
	http   *http.Server
}

// NewServer builds an httpapi.Server bound to addr.
func NewServer(addr string, store Store, readTimeout, writeTimeout time.Duration) *Server {
	s := &Server{
		store:  store,
		router: mux.NewRouter(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(s.router),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		next.ServeHTTP(w, r)
	})
}
