package server

import (
	"net/http"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// StaticHandler serves the map viewer assets, minifying text responses on
// the fly. The root path redirects to the viewer page.
func (s *Context) StaticHandler() http.Handler {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	fs := http.FileServer(http.Dir(s.Config.AssetsDir))
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/map.html", http.StatusMovedPermanently)
			return
		}
		fs.ServeHTTP(w, r)
	})

	return m.Middleware(inner)
}
