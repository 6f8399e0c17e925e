// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import "encoding/binary"

// kind-tag values for the on-disk dirent payload, per spec §6.
const (
	direntTagArticle    uint16 = 0
	direntTagRedirect   uint16 = 0xFFFF
	direntTagLinktarget uint16 = 0xFFFE
	direntTagDeleted    uint16 = 0xFFFD
)

func direntTag(k Kind) uint16 {
	switch k {
	case Article:
		return direntTagArticle
	case Redirect:
		return direntTagRedirect
	case Linktarget:
		return direntTagLinktarget
	default:
		return direntTagDeleted
	}
}

// direntVersion is written into every payload's preamble. The source
// contract (spec §6) never supplies a per-article revision number, so this
// is always zero; the field exists only because the wire format reserves
// space for it.
const direntVersion uint32 = 0

// encodeDirent serializes d in the exact layout spec §6 names: a
// kind-tag, then a preamble of mimeType/parameterLen/namespace/version,
// then kind-specific fields (cluster+blob for Article, redirectIdx for
// Redirect, nothing for Linktarget/Deleted), then url (NUL-terminated),
// title (NUL-terminated, omitted entirely when empty), and raw parameter
// bytes.
func encodeDirent(d *dirent) []byte {
	size := direntSize(d)
	buf := make([]byte, size)
	pos := 0

	binary.LittleEndian.PutUint16(buf[pos:pos+2], direntTag(d.Kind))
	pos += 2
	binary.LittleEndian.PutUint16(buf[pos:pos+2], d.MimeTypeIdx)
	pos += 2
	binary.LittleEndian.PutUint16(buf[pos:pos+2], uint16(len(d.Parameter)))
	pos += 2
	buf[pos] = d.Namespace
	pos++
	binary.LittleEndian.PutUint32(buf[pos:pos+4], direntVersion)
	pos += 4

	switch d.Kind {
	case Article:
		binary.LittleEndian.PutUint32(buf[pos:pos+4], d.Cluster)
		pos += 4
		binary.LittleEndian.PutUint32(buf[pos:pos+4], d.BlobIdx)
		pos += 4
	case Redirect:
		binary.LittleEndian.PutUint32(buf[pos:pos+4], d.RedirectIdx)
		pos += 4
	}

	pos += copy(buf[pos:], d.URL)
	buf[pos] = 0
	pos++

	if len(d.Title) > 0 {
		pos += copy(buf[pos:], d.Title)
		buf[pos] = 0
		pos++
	}

	copy(buf[pos:], d.Parameter)
	return buf
}

// direntSize computes the exact number of bytes encodeDirent will emit for
// d, without encoding it. C5's URL-pointer array needs this to derive each
// dirent's absolute offset from a running sum, per spec §6.
func direntSize(d *dirent) int {
	size := 2 + 2 + 2 + 1 + 4 // kind-tag + preamble
	switch d.Kind {
	case Article:
		size += 4 + 4 // cluster+blob
	case Redirect:
		size += 4 // redirectIdx
	}
	size += len(d.URL) + 1 // NUL-terminated
	if len(d.Title) > 0 {
		size += len(d.Title) + 1
	}
	size += len(d.Parameter)
	return size
}

// decodeDirent parses one payload record starting at buf[0], returning the
// populated dirent (Idx left zero; the caller assigns it from position)
// and the number of bytes consumed. Used by the writer's own round-trip
// tests to validate C5's output against spec §8 invariant 1. Because an
// empty title is omitted from the record, buf must end where the record
// ends: for a title-less record, any bytes past its parameter are read as
// a title.
func decodeDirent(buf []byte) (*dirent, int) {
	pos := 0
	tag := binary.LittleEndian.Uint16(buf[pos : pos+2])
	pos += 2
	mimeType := binary.LittleEndian.Uint16(buf[pos : pos+2])
	pos += 2
	paramLen := binary.LittleEndian.Uint16(buf[pos : pos+2])
	pos += 2
	namespace := buf[pos]
	pos++
	pos += 4 // version, unused

	d := &dirent{Namespace: namespace, MimeTypeIdx: mimeType}
	switch tag {
	case direntTagArticle:
		d.Kind = Article
		d.Cluster = binary.LittleEndian.Uint32(buf[pos : pos+4])
		pos += 4
		d.BlobIdx = binary.LittleEndian.Uint32(buf[pos : pos+4])
		pos += 4
	case direntTagRedirect:
		d.Kind = Redirect
		d.RedirectIdx = binary.LittleEndian.Uint32(buf[pos : pos+4])
		pos += 4
	case direntTagLinktarget:
		d.Kind = Linktarget
	default:
		d.Kind = Deleted
	}

	urlStart := pos
	for buf[pos] != 0 {
		pos++
	}
	d.URL = buf[urlStart:pos]
	pos++ // NUL

	// A title is present whenever there's more left than just the
	// trailing parameter bytes - the encoder omits it entirely when
	// empty, so its presence is inferred from the remaining length
	// rather than a flag.
	remaining := len(buf) - pos
	if remaining > int(paramLen) {
		titleStart := pos
		for buf[pos] != 0 {
			pos++
		}
		d.Title = buf[titleStart:pos]
		pos++ // NUL
	}

	d.Parameter = buf[pos : pos+int(paramLen)]
	pos += int(paramLen)
	return d, pos
}
