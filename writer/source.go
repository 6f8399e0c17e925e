// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

// Kind distinguishes the four dirent payload shapes the archive knows how
// to write (§6's kind-tag field).
type Kind int

// The four kinds a dirent (and the SourceArticle that produces it) can be.
const (
	Article Kind = iota
	Redirect
	Linktarget
	Deleted
)

func (k Kind) String() string {
	switch k {
	case Article:
		return "Article"
	case Redirect:
		return "Redirect"
	case Linktarget:
		return "Linktarget"
	case Deleted:
		return "Deleted"
	default:
		return "Kind(?)"
	}
}

// SourceArticle is everything the writer must read about one article in a
// single pass over the Source, per spec §6's source contract. The source
// may be unreplayable, so every field the writer will ever need is read up
// front; GetData is a separate, later call.
type SourceArticle struct {
	Aid            string
	Namespace      byte
	URL            []byte
	Title          []byte
	Parameter      []byte
	MimeType       string
	ShouldCompress bool
	Kind           Kind

	// RedirectAid is only meaningful when Kind == Redirect.
	RedirectAid string
}

// Source is the external collaborator that feeds articles into the
// writer. It is a single-shot pull iterator: NextArticle returns ok==false
// once exhausted, and must not be called again afterward. GetData is
// invoked once per Article-kind dirent, during cluster packing (C3),
// strictly after every NextArticle call has returned ok==false.
type Source interface {
	// NextArticle returns the next article, or ok==false when the source
	// is exhausted.
	NextArticle() (article *SourceArticle, ok bool, err error)

	// GetData returns the blob for the article with the given aid. Only
	// called for Article-kind dirents.
	GetData(aid string) ([]byte, error)

	// GetMainPage and GetLayoutPage return the aid of the main/layout
	// page, or "" if there is none.
	GetMainPage() string
	GetLayoutPage() string

	// GetUUID returns the 16-byte archive UUID to store in the header.
	GetUUID() [16]byte
}
