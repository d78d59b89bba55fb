package main

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/launchdash/launchdash/server/internal/api"
	"github.com/launchdash/launchdash/server/internal/config"
	"github.com/launchdash/launchdash/server/internal/dataset"
	"github.com/launchdash/launchdash/server/internal/metrics"
	"github.com/launchdash/launchdash/server/internal/ws"
)

// newMux mounts every HTTP surface of the serve command.
func newMux(cfg *config.Config, ds *dataset.Dataset, rec *metrics.Recorder, hub *ws.Hub) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", api.New(ds, sliderBounds(cfg), rec))
	mux.Handle("/ws/session", hub)
	mux.Handle("/metrics", rec.Handler())

	if dir := cfg.Server.UIDir; dir != "" {
		mux.Handle("/", spaHandler(dir))
	}
	return mux
}

// spaHandler serves static files from dir. Paths that match no file get
// index.html so client-side routes resolve.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if _, err := os.Stat(name); os.IsNotExist(err) {
			http.ServeFile(w, r, index)
			return
		}
		files.ServeHTTP(w, r)
	})
}
