// Package view renders html/template pages that share a common layout.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// LayoutTemplate is the entry point every page is executed through.
const LayoutTemplate = "layout"

// Set holds one template tree per page, each cloned from the shared files.
type Set struct {
	pages map[string]*template.Template
}

// Parse builds a Set from every file in fsys matching pattern. Files listed
// in shared are parsed once and cloned into each page; a page is named by its
// file name without extension.
func Parse(fsys fs.FS, pattern string, shared []string, funcs template.FuncMap) (*Set, error) {
	base, err := template.New("base").Funcs(funcs).ParseFS(fsys, shared...)
	if err != nil {
		return nil, err
	}
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}

	isShared := make(map[string]bool, len(shared))
	for _, s := range shared {
		isShared[s] = true
	}

	s := &Set{pages: make(map[string]*template.Template)}
	for _, file := range files {
		if isShared[file] {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		name := path.Base(file)
		s.pages[strings.TrimSuffix(name, path.Ext(name))] = t
	}
	return s, nil
}

// Has reports whether a page exists.
func (s *Set) Has(page string) bool {
	_, ok := s.pages[page]
	return ok
}

// Render executes page into a buffer first so template errors never leave a
// partial response.
func (s *Set) Render(c *gin.Context, status int, page string, data any) error {
	t, ok := s.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, LayoutTemplate, data); err != nil {
		return err
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}
