// Package web serves the bundled browser client.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"path"

	"github.com/yousuf64/shift"
)

//go:embed static
var staticFS embed.FS

// RegisterRoutes serves the entry page at / and the static files under
// /assets/.
func RegisterRoutes(router *shift.Router) {
	files, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	router.GET("/", func(w http.ResponseWriter, r *http.Request, _ shift.Route) error {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFileFS(w, r, files, "index.html")
		return nil
	})

	router.GET("/assets/*path", func(w http.ResponseWriter, r *http.Request, route shift.Route) error {
		name := path.Clean(route.Params.Get("path"))
		if !fs.ValidPath(name) || name == "index.html" {
			http.NotFound(w, r)
			return nil
		}
		if info, err := fs.Stat(files, name); err != nil || info.IsDir() {
			http.NotFound(w, r)
			return nil
		}
		http.ServeFileFS(w, r, files, name)
		return nil
	})
}
