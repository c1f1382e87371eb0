// Package views holds the server-rendered HTML templates, embedded so
// the binary ships self-contained.
package views

import (
	"embed"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

// MainLayout wraps every rendered page.
const MainLayout = "layouts/main"

//go:embed *.html layouts/*.html
var files embed.FS

// Engine returns a template engine over the embedded files. Template
// names are extension-free paths, e.g. "index" and "layouts/main".
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(files), ".html")
}
