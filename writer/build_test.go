// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/binary"
	"testing"

	. "go.chromium.org/luci/common/testing/assertions"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	Convey("empty source produces the minimal archive (spec scenario 1)", t, func() {
		src := &fakeSource{}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		// header(88) + mimelist("\0"=1) + url/title ptr arrays(0) +
		// geo header(12) + checksum(16).
		So(out.Len(), ShouldEqual, 88+1+12+16)

		hdr := decodeHeader(out.Bytes()[:headerSize])
		So(hdr.Magic, ShouldEqual, headerMagic)
		So(hdr.ArticleCount, ShouldEqual, uint32(0))
		So(hdr.MainPage, ShouldEqual, uint32(0xFFFFFFFF))
	})

	Convey("single article, no geo (spec scenario 2)", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{articleAt("a1", "A", "x", "X", "text/html")},
			blobs:    map[string][]byte{"a1": []byte("hi")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		dirents, err := reparseDirents(out.Bytes())
		So(err, ShouldBeNil)
		So(len(dirents), ShouldEqual, 1)

		idx, found := FindByURL(dirents, 'A', []byte("x"))
		So(found, ShouldBeTrue)
		So(idx, ShouldEqual, 0)

		blob, err := readDirentBlob(out.Bytes(), dirents, idx)
		So(err, ShouldBeNil)
		So(string(blob), ShouldEqual, "hi")
	})

	Convey("redirect chain (spec scenario 3)", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{
				articleAt("alpha", "A", "a", "A", "text/html"),
				articleAt("beta", "A", "b", "B", "text/html"),
				redirectAt("r1", "A", "r", "alpha"),
			},
			blobs: map[string][]byte{"alpha": []byte("A"), "beta": []byte("B")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		dirents, err := reparseDirents(out.Bytes())
		So(err, ShouldBeNil)
		So(len(dirents), ShouldEqual, 3)

		aIdx, _ := FindByURL(dirents, 'A', []byte("a"))
		rIdx, found := FindByURL(dirents, 'A', []byte("r"))
		So(found, ShouldBeTrue)
		So(dirents[rIdx].RedirectIdx, ShouldEqual, dirents[aIdx].Idx)
	})

	Convey("redirect to an unknown aid never reaches the final archive", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{
				articleAt("alpha", "A", "a", "A", "text/html"),
				redirectAt("r1", "A", "r", "does-not-exist"),
			},
			blobs: map[string][]byte{"alpha": []byte("A")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		dirents, err := reparseDirents(out.Bytes())
		So(err, ShouldBeNil)
		So(len(dirents), ShouldEqual, 1)
	})

	Convey("geo extraction (spec scenario 6)", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{articleAt("a1", "A", "x", "X", "text/html")},
			blobs:    map[string][]byte{"a1": []byte(`<meta name="geo.position" content="48.137154;11.576124">`)},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		hdr := decodeHeader(out.Bytes()[:headerSize])
		v, err := newGeoIndexView(out.Bytes()[hdr.GeoIdxPos:hdr.ChecksumPos])
		So(err, ShouldBeNil)
		points, _ := FindByGeoArea(v, articleGeoPoint{}, articleGeoPoint{Latitude: 0xFFFFFFFF, Longitude: 0xFFFFFFFF}, 10)
		So(len(points), ShouldEqual, 1)
		So(abs32(latitudeToMicroDegrees(points[0].Latitude)-48137154), ShouldBeLessThanOrEqualTo, 1)
	})

	Convey("header self-consistency: urlPtrPos entries land on dirent starts (invariant 6)", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{
				articleAt("a", "A", "a", "", "text/html"),
				articleAt("b", "A", "b", "", "text/html"),
				articleAt("c", "A", "c", "", "text/html"),
			},
			blobs: map[string][]byte{"a": []byte("1"), "b": []byte("22"), "c": []byte("333")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		buf := out.Bytes()
		hdr := decodeHeader(buf[:headerSize])
		for i := 0; i < 3; i++ {
			off := binary.LittleEndian.Uint64(buf[hdr.URLPtrPos+uint64(i)*8 : hdr.URLPtrPos+uint64(i)*8+8])
			_, n := decodeDirent(buf[off:])
			So(n, ShouldBeGreaterThan, 0)
		}
	})

	Convey("checksum: trailing MD5 matches the digest of everything before it (invariant 7)", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{articleAt("a", "A", "a", "", "text/html")},
			blobs:    map[string][]byte{"a": []byte("hello")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		buf := out.Bytes()
		hdr := decodeHeader(buf[:headerSize])
		sum := md5.Sum(buf[:hdr.ChecksumPos])
		So(buf[hdr.ChecksumPos:hdr.ChecksumPos+16], ShouldResemble, sum[:])
	})

	Convey("MIME list monotonicity (invariant 5)", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{
				articleAt("a", "A", "a", "", "text/html"),
				articleAt("b", "A", "b", "", "application/javascript"),
				articleAt("c", "A", "c", "", "image/png"),
			},
			blobs: map[string][]byte{"a": []byte("1"), "b": []byte("2"), "c": []byte("3")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionNone))
		So(err, ShouldBeNil)

		buf := out.Bytes()
		hdr := decodeHeader(buf[:headerSize])
		names := parseMimeList(buf[hdr.MimeListPos:hdr.URLPtrPos])
		for i := 1; i < len(names); i++ {
			So(names[i-1] < names[i], ShouldBeTrue)
		}
	})

	Convey("a build with a 1 KiB min chunk size and zlib compression succeeds", t, func() {
		src := &fakeSource{
			articles: []*SourceArticle{articleAt("a", "A", "a", "", "text/html")},
			blobs:    map[string][]byte{"a": []byte("hello")},
		}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithMinChunkSize(1), WithCompression(CompressionZlib))
		So(err, ShouldBeNil)
	})

	Convey("an invalid compression tag is rejected up front", t, func() {
		src := &fakeSource{}
		out := &bytes.Buffer{}
		err := Build(ctx, src, out, WithCompression(CompressionTag(99)))
		So(err, ShouldErrLike, "invalid build configuration")
	})
}

// reparseDirents decodes every dirent payload out of a just-built archive,
// in URL order, using the header's own recorded offsets - this is the
// "iterating it by URL order reproduces the post-step-8 dirent sequence"
// round-trip law from spec §8.
func reparseDirents(buf []byte) ([]*dirent, error) {
	hdr := decodeHeader(buf[:headerSize])
	dirents := make([]*dirent, hdr.ArticleCount)
	for i := uint32(0); i < hdr.ArticleCount; i++ {
		off := binary.LittleEndian.Uint64(buf[hdr.URLPtrPos+uint64(i)*8:])
		// Each payload ends where the next begins; the last one ends at
		// the cluster-pointer array.
		end := hdr.ClusterPtrPos
		if i+1 < hdr.ArticleCount {
			end = binary.LittleEndian.Uint64(buf[hdr.URLPtrPos+uint64(i+1)*8:])
		}
		d, _ := decodeDirent(buf[off:end])
		d.Idx = i
		dirents[i] = d
	}
	return dirents, nil
}

func readDirentBlob(buf []byte, dirents []*dirent, idx int) ([]byte, error) {
	hdr := decodeHeader(buf[:headerSize])
	d := dirents[idx]
	clusterPtr := binary.LittleEndian.Uint64(buf[hdr.ClusterPtrPos+uint64(d.Cluster)*8:])
	_, blobs, err := readCluster(bytes.NewReader(buf[clusterPtr:]))
	if err != nil {
		return nil, err
	}
	return blobs[d.BlobIdx], nil
}

func parseMimeList(buf []byte) []string {
	var names []string
	start := 0
	for i, b := range buf {
		if b == 0 {
			if i == start {
				break // list terminator
			}
			names = append(names, string(buf[start:i]))
			start = i + 1
		}
	}
	return names
}
