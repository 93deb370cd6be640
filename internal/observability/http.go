package observability

import (
	"encoding/json"
	"net/http"
)

// Handler serves the full metrics snapshot as JSON. The snapshot is computed
// per request; there is no caching and no filtering, so the endpoint always
// reflects the counters at the moment of the call.
func Handler(metrics *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.Snapshot())
	})
}
