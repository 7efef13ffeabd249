package swaggerui

import (
	"net/http"

	swgui "github.com/swaggest/swgui/v5"
)

// Handler returns a Swagger UI handler mounted at basePath (assets embedded,
// no CDN).
func Handler(specPath, basePath string) http.Handler {
	return swgui.New("Annales API", specPath, basePath)
}
