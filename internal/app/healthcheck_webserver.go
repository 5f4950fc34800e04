package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

type statusItem struct {
	Name      string `json:"name"`
	Key       string `json:"key"`
	Depth     int    `json:"depth"`
	Enabled   bool   `json:"enabled"`
	Active    bool   `json:"active"`
	AlwaysOn  bool   `json:"always_on"`
	Overrides int    `json:"overrides"`
	Error     string `json:"error,omitempty"`
}

// statusHandler reports the live tweak tree.
func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Status endpoint hit.", "remote_addr", r.RemoteAddr)
	items := []statusItem{}
	for _, st := range a.runner.Status() {
		item := statusItem{
			Name:      st.Name,
			Key:       st.Key,
			Depth:     st.Depth,
			Enabled:   st.Enabled,
			Active:    st.Active,
			AlwaysOn:  st.AlwaysOn,
			Overrides: st.Overrides,
		}
		if st.Err != nil {
			item.Error = st.Err.Error()
		}
		items = append(items, item)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"session": a.runner.Session(), "tweaks": items}); err != nil {
		a.logger.Error("Failed to write status.", "error", err)
	}
}

func (a *App) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	return mux
}

// startHealthcheckServer runs the health check HTTP server in the background
// and returns it so the caller can shut it down.
func (a *App) startHealthcheckServer(port int) *http.Server {
	a.logger.Debug("Configuring health check server.")
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.healthMux(),
	}

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Health check server failed", "error", err)
		}
	}()
	return srv
}
