package handlers

import (
	"html/template"
	"net/http"

	"airwatch/internal/render"
)

const (
	docsPath    = "/api/docs"
	openAPIPath = "/api/docs/openapi.json"
	swaggerDist = "https://unpkg.com/swagger-ui-dist@5.10.0"
)

type docsPage struct {
	Title   string
	SpecURL string
	Dist    string
	Nav     []render.NavLink
}

// docsTemplate renders the Swagger UI under the dashboard navigation
var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link rel="stylesheet" type="text/css" href="{{.Dist}}/swagger-ui.css">
<style>
body { margin:0; font-family: sans-serif; }
nav { padding: 8px 16px; background: #1f4e79; }
nav a { color: #fff; margin-right: 16px; text-decoration: none; }
</style>
</head>
<body>
<nav>{{range .Nav}}<a href="{{.URL}}">{{.Label}}</a>{{end}}</nav>
<div id="swagger-ui"></div>
<script src="{{.Dist}}/swagger-ui-bundle.js"></script>
<script>
window.onload = function() {
    window.ui = SwaggerUIBundle({
        url: {{.SpecURL}},
        dom_id: '#swagger-ui',
        deepLinking: true,
        tryItOutEnabled: true,
        defaultModelsExpandDepth: -1
    });
};
</script>
</body>
</html>`))

// SwaggerUI serves the interactive API page for the AirWatch endpoints
func SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	docsTemplate.Execute(w, docsPage{
		Title:   "AirWatch API Documentation",
		SpecURL: openAPIPath,
		Dist:    swaggerDist,
		Nav:     pageNav,
	})
}
