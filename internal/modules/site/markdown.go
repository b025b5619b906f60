package site

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed content/*.md
var contentFS embed.FS

// mdPage is a static page authored in markdown with a YAML front matter.
type mdPage struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Body        template.HTML
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

func loadMarkdownPages() (map[string]mdPage, error) {
	files, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]mdPage, len(files))
	for _, file := range files {
		raw, err := contentFS.ReadFile(file)
		if err != nil {
			return nil, err
		}
		page, err := parseMarkdownPage(raw)
		if err != nil {
			return nil, err
		}
		pages[strings.TrimSuffix(path.Base(file), ".md")] = page
	}
	return pages, nil
}

func parseMarkdownPage(raw []byte) (mdPage, error) {
	var page mdPage
	body := raw
	if rest, ok := bytes.CutPrefix(raw, []byte("---\n")); ok {
		if front, after, found := bytes.Cut(rest, []byte("\n---\n")); found {
			if err := yaml.Unmarshal(front, &page); err != nil {
				return page, err
			}
			body = after
		}
	}
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return page, err
	}
	page.Body = template.HTML(buf.String())
	return page, nil
}
