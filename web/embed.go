// Package web serves the chat frontend. The bundled page in dist/ is
// embedded into the binary; STATIC_DIR can point at a directory on disk to
// serve instead.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed all:dist
var distFS embed.FS

// Embedded returns the bundled frontend filesystem rooted at dist/.
func Embedded() fs.FS {
	subFS, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return subFS
}

// SPAHandler returns an http.Handler that serves static files from
// staticDir, or from the embedded bundle when staticDir is empty. Paths
// that do not match a file fall back to index.html.
func SPAHandler(staticDir string) http.Handler {
	root := Embedded()
	if staticDir != "" {
		root = os.DirFS(staticDir)
		slog.Info("Serving frontend from disk", "dir", staticDir)
	}
	return FSHandler(root)
}

// FSHandler serves root as a single-page application.
func FSHandler(root fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}

		if info, err := fs.Stat(root, name); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		// Unknown path: serve index.html and let the page route.
		r2 := r.Clone(r.Context())
		r2.URL.Path = "/"
		fileServer.ServeHTTP(w, r2)
	})
}
