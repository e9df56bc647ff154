package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/faceforge/faceforge/internal/storage"
)

// ServeSwapped returns a handler that streams a single transformed image by
// filename. Only exact file names are served; directory requests, nested
// paths and traversal attempts all get a 404.
func ServeSwapped(files *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "*")
		if name == "" || name != filepath.Base(name) {
			NotFound(w, r)
			return
		}

		path := filepath.Join(files.SwappedRoot(), name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			NotFound(w, r)
			return
		}

		http.ServeFile(w, r, path)
	}
}
