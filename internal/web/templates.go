package web

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"path"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// embedLoader serves pongo2 templates from the embedded templates directory.
type embedLoader struct {
	fsys fs.FS
}

func (l embedLoader) Abs(_, name string) string {
	return path.Clean(name)
}

func (l embedLoader) Get(name string) (io.Reader, error) {
	b, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func newTemplateSet() (*pongo2.TemplateSet, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	return pongo2.NewSet("pages", embedLoader{fsys: sub}), nil
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
