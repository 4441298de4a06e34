// Package observability mounts opt-in runtime diagnostics.
package observability

import (
	nethttp "net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
)

// Config captures opt-in observability toggles that wire into the server.
type Config struct {
	EnablePprof bool
}

// Register mounts the pprof endpoints under /debug/pprof when enabled.
func Register(router *mux.Router, cfg Config) {
	if router == nil || !cfg.EnablePprof {
		return
	}
	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.Handle("/{profile}", nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		pprof.Handler(mux.Vars(r)["profile"]).ServeHTTP(w, r)
	}))
}
