package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strings"
)

//go:embed templates/*.html static/*
var content embed.FS

// layoutFile wraps every page; pages define "title" and "content".
const layoutFile = "templates/layout.html"

// Templates parses the layout together with each page, keyed by page name
// ("orders" for templates/orders.html).
func Templates(funcs template.FuncMap) (map[string]*template.Template, error) {
	files, err := fs.Glob(content, "templates/*.html")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(content, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Static returns the static assets to serve.
func Static() fs.FS {
	// Dev mode: Serve from disk
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(content, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
