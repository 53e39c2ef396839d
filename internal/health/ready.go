package health

import (
	"net/http"

	"github.com/askline/askline/internal/runtime"
)

func ReadyHandler(rt *runtime.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if !rt.ConfigLoaded {
			http.Error(w, "config not loaded", 503)
			return
		}

		if err := rt.Pinger.Ping(r.Context()); err != nil {
			http.Error(w, "endpoint unreachable", 503)
			return
		}

		w.WriteHeader(200)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
