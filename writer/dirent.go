// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"bytes"
	"sort"

	"go.chromium.org/luci/common/errors"
)

// dirent is the central per-article record described in spec §3. Fields
// are set by different pipeline stages (see the package doc comment);
// once buildDirentTable returns, every dirent's Idx is final and the
// slice iterates in strictly increasing (Namespace, URL) order.
type dirent struct {
	Aid       string
	Namespace byte
	URL       []byte
	Title     []byte
	Parameter []byte
	Kind      Kind

	MimeTypeIdx uint16 // Article only
	Compress    bool   // Article only

	Cluster uint32 // Article only, filled by C3
	BlobIdx uint32 // Article only, filled by C3

	RedirectAid string // Redirect only
	RedirectIdx uint32 // Redirect only, filled by C1 step 7

	Idx uint32 // final URL-order index
}

// sortTitle returns the bytes the title comparator should use: spec §3
// says an empty title sorts as though it were the URL.
func (d *dirent) sortTitle() []byte {
	if len(d.Title) == 0 {
		return d.URL
	}
	return d.Title
}

func compareURL(a, b *dirent) int {
	if a.Namespace != b.Namespace {
		if a.Namespace < b.Namespace {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.URL, b.URL)
}

func compareTitle(a, b *dirent) int {
	if a.Namespace != b.Namespace {
		if a.Namespace < b.Namespace {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.sortTitle(), b.sortTitle())
}

func byURL(d []*dirent) func(i, j int) bool {
	return func(i, j int) bool { return compareURL(d[i], d[j]) < 0 }
}

func byAid(d []*dirent) func(i, j int) bool {
	return func(i, j int) bool { return d[i].Aid < d[j].Aid }
}

// findByAid binary-searches an aid-sorted slice for aid, returning the
// index and whether it was found.
func findByAid(sorted []*dirent, aid string) (int, bool) {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i].Aid >= aid })
	if i < len(sorted) && sorted[i].Aid == aid {
		return i, true
	}
	return i, false
}

// drainSource implements spec §4.1 step 1: pull every article out of src,
// interning Article MIME types as they go.
func drainSource(src Source, mimeTypes *mimeTypeRegistry) ([]*dirent, error) {
	var out []*dirent
	for {
		a, ok, err := src.NextArticle()
		if err != nil {
			return nil, errors.Annotate(err).Reason("reading source").Err()
		}
		if !ok {
			break
		}
		d := &dirent{
			Aid:         a.Aid,
			Namespace:   a.Namespace,
			URL:         a.URL,
			Title:       a.Title,
			Parameter:   a.Parameter,
			Kind:        a.Kind,
			Compress:    a.ShouldCompress,
			RedirectAid: a.RedirectAid,
		}
		if a.Kind == Article {
			id, err := mimeTypes.intern(a.MimeType)
			if err != nil {
				return nil, err
			}
			d.MimeTypeIdx = id
		}
		out = append(out, d)
	}
	return out, nil
}

// invalidateBrokenRedirects implements spec §4.1 step 3: any Redirect
// dirent whose RedirectAid isn't present in the (already aid-sorted)
// slice is dropped. The slice remains aid-sorted afterward, by
// construction (compaction preserves relative order).
func invalidateBrokenRedirects(sortedByAid []*dirent) []*dirent {
	// Decide keep/drop against the untouched slice first: compacting
	// in-place while also binary-searching the same backing array would
	// let later probes see half-shifted data.
	keep := make([]bool, len(sortedByAid))
	for i, d := range sortedByAid {
		if d.Kind == Redirect {
			_, ok := findByAid(sortedByAid, d.RedirectAid)
			keep[i] = ok
		} else {
			keep[i] = true
		}
	}

	out := sortedByAid[:0]
	for i, d := range sortedByAid {
		if keep[i] {
			out = append(out, d)
		}
	}
	return out
}

// buildDirentTable runs the full C1 algorithm from spec §4.1, returning
// the final dirents in URL order with Idx/RedirectIdx filled in.
func buildDirentTable(src Source, mimeTypes *mimeTypeRegistry) ([]*dirent, error) {
	dirents, err := drainSource(src, mimeTypes)
	if err != nil {
		return nil, err
	}

	// Step 2: sort by aid.
	sort.Slice(dirents, byAid(dirents))

	// Step 3: invalidate broken redirects (requires aid-sorted input,
	// and the result remains aid-sorted).
	dirents = invalidateBrokenRedirects(dirents)

	// Step 4: sort by (namespace, url).
	sort.Slice(dirents, byURL(dirents))

	// Step 5: assign idx = position in URL order.
	for i, d := range dirents {
		d.Idx = uint32(i)
	}

	// Step 6: re-sort by aid for O(log n) redirect resolution.
	sort.Slice(dirents, byAid(dirents))

	// Step 7: resolve redirects.
	for _, d := range dirents {
		if d.Kind != Redirect {
			continue
		}
		i, ok := findByAid(dirents, d.RedirectAid)
		if !ok {
			// Step 3 already removed every Redirect whose target is
			// missing; reaching here means that invariant was violated.
			return nil, errors.Reason(
				"internal consistency: redirect target %(redirectAid)q for %(aid)q vanished after step 3").
				D("aid", d.Aid).D("redirectAid", d.RedirectAid).Err()
		}
		d.RedirectIdx = dirents[i].Idx
	}

	// Step 8: final sort by (namespace, url).
	sort.Slice(dirents, byURL(dirents))

	return dirents, nil
}
