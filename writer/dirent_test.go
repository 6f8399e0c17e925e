// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeSource is a canned, in-memory writer.Source used by every writer
// package test that needs one: articles are supplied up front and
// GetData looks them up by aid.
type fakeSource struct {
	articles   []*SourceArticle
	blobs      map[string][]byte
	mainPage   string
	layoutPage string
	uuid       [16]byte
	pos        int
}

func (s *fakeSource) NextArticle() (*SourceArticle, bool, error) {
	if s.pos >= len(s.articles) {
		return nil, false, nil
	}
	a := s.articles[s.pos]
	s.pos++
	return a, true, nil
}

func (s *fakeSource) GetData(aid string) ([]byte, error) { return s.blobs[aid], nil }
func (s *fakeSource) GetMainPage() string                { return s.mainPage }
func (s *fakeSource) GetLayoutPage() string               { return s.layoutPage }
func (s *fakeSource) GetUUID() [16]byte                   { return s.uuid }


func articleAt(aid, ns, url, title, mimeType string) *SourceArticle {
	return &SourceArticle{
		Aid:       aid,
		Namespace: ns[0],
		URL:       []byte(url),
		Title:     []byte(title),
		MimeType:  mimeType,
		Kind:      Article,
	}
}

func redirectAt(aid, ns, url, target string) *SourceArticle {
	return &SourceArticle{
		Aid:         aid,
		Namespace:   ns[0],
		URL:         []byte(url),
		Kind:        Redirect,
		RedirectAid: target,
	}
}

func TestBuildDirentTable(t *testing.T) {
	t.Parallel()

	Convey("dirents end up sorted by (namespace, url), idx == position", t, func() {
		src := &fakeSource{articles: []*SourceArticle{
			articleAt("a3", "A", "c", "C title", "text/html"),
			articleAt("a1", "A", "a", "A title", "text/html"),
			articleAt("a2", "A", "b", "B title", "text/html"),
		}}

		dirents, err := buildDirentTable(src, newMimeTypeRegistry())
		So(err, ShouldBeNil)
		So(len(dirents), ShouldEqual, 3)
		So(string(dirents[0].URL), ShouldEqual, "a")
		So(string(dirents[1].URL), ShouldEqual, "b")
		So(string(dirents[2].URL), ShouldEqual, "c")
		for i, d := range dirents {
			So(d.Idx, ShouldEqual, uint32(i))
		}
	})

	Convey("a redirect to a known aid resolves to the target's idx", t, func() {
		src := &fakeSource{articles: []*SourceArticle{
			articleAt("a1", "A", "a", "A title", "text/html"),
			redirectAt("r1", "A", "r", "a1"),
		}}

		dirents, err := buildDirentTable(src, newMimeTypeRegistry())
		So(err, ShouldBeNil)
		So(len(dirents), ShouldEqual, 2)

		idx, ok := FindByURL(dirents, 'A', []byte("a"))
		So(ok, ShouldBeTrue)
		targetIdx := dirents[idx].Idx

		ridx, ok := FindByURL(dirents, 'A', []byte("r"))
		So(ok, ShouldBeTrue)
		So(dirents[ridx].RedirectIdx, ShouldEqual, targetIdx)
	})

	Convey("a redirect to an unknown aid is silently dropped", t, func() {
		src := &fakeSource{articles: []*SourceArticle{
			articleAt("a1", "A", "a", "A title", "text/html"),
			redirectAt("r1", "A", "r", "does-not-exist"),
		}}

		dirents, err := buildDirentTable(src, newMimeTypeRegistry())
		So(err, ShouldBeNil)
		So(len(dirents), ShouldEqual, 1)
		So(string(dirents[0].URL), ShouldEqual, "a")
	})

	Convey("empty source yields an empty dirent table", t, func() {
		src := &fakeSource{}
		dirents, err := buildDirentTable(src, newMimeTypeRegistry())
		So(err, ShouldBeNil)
		So(dirents, ShouldBeEmpty)
	})

	Convey("an empty title sorts as though it were the URL", t, func() {
		d := &dirent{URL: []byte("zz"), Title: nil}
		So(string(d.sortTitle()), ShouldEqual, "zz")
	})
}

func TestFindByURL(t *testing.T) {
	t.Parallel()

	Convey("binary search over URL order", t, func() {
		dirents := []*dirent{
			{Namespace: 'A', URL: []byte("a")},
			{Namespace: 'A', URL: []byte("c")},
			{Namespace: 'A', URL: []byte("e")},
		}

		pos, found := FindByURL(dirents, 'A', []byte("c"))
		So(found, ShouldBeTrue)
		So(pos, ShouldEqual, 1)

		pos, found = FindByURL(dirents, 'A', []byte("b"))
		So(found, ShouldBeFalse)
		So(pos, ShouldEqual, 1) // lower-bound position
	})
}
