// Package handlers wires the node's HTTP surfaces: a debug mux exposing the
// standard library's profiling endpoints, and the v1 public/private
// routers built in the v1 subpackage.
package handlers

import (
	"expvar"
	"net/http"
	"net/http/pprof"
)

// DebugStandardLibraryMux registers the standard library debug endpoints
// (pprof profiles and expvar counters) that ship with every Go binary.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux adds a build-version endpoint on top of the standard library mux.
func DebugMux(build string) http.Handler {
	mux := DebugStandardLibraryMux()

	mux.HandleFunc("/debug/build", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(build))
	})

	return mux
}
