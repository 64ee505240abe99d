package app

import (
	"encoding/json"
	"net/http"
	"time"
)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>authsvc API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
  <script>
    window.onload = () => { window.ui = SwaggerUIBundle({ url: "/openapi.json", dom_id: "#swagger-ui" }); };
  </script>
</body>
</html>
`

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// registerHTTP mounts probes, docs, metrics and the API on mux.
func (a *App) registerHTTP(mux *http.ServeMux) {
	up := func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, healthResponse{Status: "UP", Service: a.cfg.ServiceName})
	}
	mux.HandleFunc("GET /health", up)
	mux.HandleFunc("GET /health/live", up)
	mux.HandleFunc("GET /health/ready", a.handleReady)

	mux.HandleFunc("GET /openapi.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(a.openapi)
	})
	mux.HandleFunc("GET /swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("GET /swagger/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(swaggerPage))
	})

	if a.registry != nil {
		mux.Handle("GET /metrics", a.metricsHandler())
	}

	a.auth.Register(mux)
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	if a.cfg.ReadinessRequireDB && a.db == nil {
		writeHealth(w, http.StatusServiceUnavailable, healthResponse{Status: "DOWN", Service: a.cfg.ServiceName})
		return
	}
	if a.db != nil {
		if err := PingDB(r.Context(), a.db, 2*time.Second); err != nil {
			a.log.Info("health.ready.db_down", "err", err)
			writeHealth(w, http.StatusServiceUnavailable, healthResponse{Status: "DOWN", Service: a.cfg.ServiceName})
			return
		}
	}
	writeHealth(w, http.StatusOK, healthResponse{Status: "READY", Service: a.cfg.ServiceName})
}

func writeHealth(w http.ResponseWriter, status int, body healthResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
