// Package docs indexes the active project's docs directory so the docs
// palette can offer titles, and watches it so open palettes stay fresh.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcastell/wheelhouse/internal/log"
)

// Doc is one indexed markdown document.
type Doc struct {
	Title string
	Path  string
}

// Scan reads dir for markdown files and returns them sorted by title.
// A missing directory is not an error; projects without docs are common.
func Scan(dir string) ([]Doc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading docs directory: %w", err)
	}

	var docs []Doc
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the project's own docs directory
		if err != nil {
			log.ErrorErr(log.CatDocs, "Failed to read doc", err, "path", path)
			continue
		}
		docs = append(docs, Doc{
			Title: titleFor(data, entry.Name()),
			Path:  path,
		})
	}

	sort.Slice(docs, func(i, j int) bool {
		ti, tj := strings.ToLower(docs[i].Title), strings.ToLower(docs[j].Title)
		if ti != tj {
			return ti < tj
		}
		return docs[i].Path < docs[j].Path
	})
	return docs, nil
}

// titleFor extracts a front matter title, falling back to the file name
// without its extension.
func titleFor(data []byte, filename string) string {
	fallback := strings.TrimSuffix(filename, filepath.Ext(filename))

	block, ok := frontMatterBlock(data)
	if !ok {
		return fallback
	}
	var meta struct {
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return fallback
	}
	if title := strings.TrimSpace(meta.Title); title != "" {
		return title
	}
	return fallback
}

// frontMatterBlock returns the YAML between a leading "---" fence and the
// next one.
func frontMatterBlock(data []byte) ([]byte, bool) {
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], " ") != "---" {
		return nil, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " ") == "---" {
			return []byte(strings.Join(lines[1:i], "\n")), true
		}
	}
	return nil, false
}
