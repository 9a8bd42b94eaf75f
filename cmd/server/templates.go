package main

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	// until n yields n items, for empty calendar cells.
	"until": func(n int) []struct{} { return make([]struct{}, n) },
}

// LoadTemplates parses the page templates
func LoadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}
