// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.chromium.org/luci/common/errors"

	"github.com/peter-x/openzim/writer"
)

// metadata is the set of `M`-namespace values zimwriterfs accepts on the
// command line, mirroring zimcreator.cpp's ZimCreatorFS constructor
// arguments.
type metadata struct {
	welcome     string
	favicon     string
	language    string
	title       string
	description string
	creator     string
	publisher   string
	tags        string
}

// fsSource walks a directory tree once, up front, and replays it as a
// writer.Source: every regular file becomes an `A`-namespace article keyed
// by its slash-separated relative path, plus a handful of synthesized
// `M`-namespace metadata articles. Reading the whole tree eagerly keeps
// GetData a simple re-open-by-path rather than needing the walk to still
// be in progress.
type fsSource struct {
	root     string
	uuid     [16]byte
	articles []*writer.SourceArticle
	pos      int

	welcomeAid string
	faviconAid string

	byURL map[string]string // url -> aid, for resolving welcome/favicon
}

func newFSSource(root string, m metadata) (*fsSource, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Annotate(err).Reason("resolving source root").Err()
	}

	s := &fsSource{root: root, byURL: map[string]string{}}
	counts := map[string]int{}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		url := filepath.ToSlash(rel)
		mimeType := guessMimeType(url)
		counts[mimeType]++

		a := &writer.SourceArticle{
			Aid:            url,
			Namespace:      'A',
			URL:            []byte(url),
			Title:          []byte(filepath.Base(url)),
			MimeType:       mimeType,
			ShouldCompress: shouldCompress(mimeType),
			Kind:           writer.Article,
		}
		s.articles = append(s.articles, a)
		s.byURL[url] = a.Aid
		return nil
	})
	if err != nil {
		return nil, errors.Annotate(err).Reason("walking source tree %(root)q").D("root", root).Err()
	}

	sort.Slice(s.articles, func(i, j int) bool { return s.articles[i].Aid < s.articles[j].Aid })

	if m.welcome != "" {
		aid, ok := s.byURL[m.welcome]
		if !ok {
			return nil, errors.Reason("--welcome %(url)q not found under source root").D("url", m.welcome).Err()
		}
		s.welcomeAid = aid
	}
	if m.favicon != "" {
		aid, ok := s.byURL[m.favicon]
		if !ok {
			return nil, errors.Reason("--favicon %(url)q not found under source root").D("url", m.favicon).Err()
		}
		s.faviconAid = aid
	}

	s.articles = append(s.articles, metadataArticles(m, counts)...)

	id := uuid.New()
	copy(s.uuid[:], id[:])

	return s, nil
}

// metadataArticles synthesizes the `M`-namespace text articles
// zimcreator.cpp writes from its CLI flags, plus the `Counter` article
// (supplemented feature: a text/plain MIME-type tally) computed from
// counts gathered during the walk above.
func metadataArticles(m metadata, counts map[string]int) []*writer.SourceArticle {
	var out []*writer.SourceArticle
	add := func(url, value string) {
		if value == "" {
			return
		}
		out = append(out, &writer.SourceArticle{
			Aid:            "M/" + url,
			Namespace:      'M',
			URL:            []byte(url),
			MimeType:       "text/plain",
			ShouldCompress: true,
			Kind:           writer.Article,
			// GetData hands this straight back; metadata values never
			// come from the filesystem.
			Parameter: []byte(value),
		})
	}
	add("Language", m.language)
	add("Title", m.title)
	add("Description", m.description)
	add("Creator", m.creator)
	add("Publisher", m.publisher)
	add("Tags", m.tags)

	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	var counter strings.Builder
	for _, n := range names {
		fmt.Fprintf(&counter, "%s=%d;", n, counts[n])
	}
	add("Counter", counter.String())

	return out
}

func guessMimeType(url string) string {
	if t := mime.TypeByExtension(filepath.Ext(url)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// shouldCompress mirrors zimcreator.cpp's rule of thumb: text-like content
// compresses well, already-compressed media formats don't.
func shouldCompress(mimeType string) bool {
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		return true
	case strings.Contains(mimeType, "javascript"), strings.Contains(mimeType, "json"),
		strings.Contains(mimeType, "xml"), strings.Contains(mimeType, "svg"):
		return true
	default:
		return false
	}
}

func (s *fsSource) NextArticle() (*writer.SourceArticle, bool, error) {
	if s.pos >= len(s.articles) {
		return nil, false, nil
	}
	a := s.articles[s.pos]
	s.pos++
	return a, true, nil
}

func (s *fsSource) GetData(aid string) ([]byte, error) {
	if strings.HasPrefix(aid, "M/") {
		for _, a := range s.articles {
			if a.Aid == aid {
				return a.Parameter, nil
			}
		}
		return nil, errors.Reason("unknown metadata aid %(aid)q").D("aid", aid).Err()
	}
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(aid)))
}

func (s *fsSource) GetMainPage() string   { return s.welcomeAid }
func (s *fsSource) GetLayoutPage() string { return s.faviconAid }
func (s *fsSource) GetUUID() [16]byte     { return s.uuid }
