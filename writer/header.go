// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import "encoding/binary"

// headerMagic and headerVersion are the archive's file magic and format
// version, per spec §6.
const (
	headerMagic   uint32 = 0x44D495A
	headerVersion uint32 = 1

	// headerSize is the fixed on-disk header record size. Summing the
	// fields spec §6 enumerates (magic, version, a 16-byte uuid, two
	// u32 counts, four u64 section positions, two u32 page indices, and
	// two more u64 positions for checksum and geo-index) gives 88
	// bytes; the spec's prose aside calling this "80 bytes" predates
	// the geoIdxPos field and is superseded by its own field list (see
	// DESIGN.md).
	headerSize int = 88
)

// noPage is the header sentinel meaning "no main/layout page", per spec
// §6's "unused fields carry u32::MAX / u64::MAX".
const noPage uint32 = 0xFFFFFFFF

// fileHeader is the fixed 88-byte record written at offset 0, per spec
// §6.
type fileHeader struct {
	Magic        uint32
	Version      uint32
	UUID         [16]byte
	ArticleCount uint32
	ClusterCount uint32
	URLPtrPos    uint64
	TitleIdxPos  uint64
	ClusterPtrPos uint64
	MimeListPos  uint64
	MainPage     uint32
	LayoutPage   uint32
	ChecksumPos  uint64
	GeoIdxPos    uint64
}

// encode writes the header in the exact 88-byte little-endian layout from
// spec §6: magic, version, uuid, articleCount, clusterCount, urlPtrPos,
// titleIdxPos, clusterPtrPos, mimeListPos, mainPage, layoutPage,
// checksumPos, geoIdxPos.
func (h fileHeader) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	copy(buf[8:24], h.UUID[:])
	binary.LittleEndian.PutUint32(buf[24:28], h.ArticleCount)
	binary.LittleEndian.PutUint32(buf[28:32], h.ClusterCount)
	binary.LittleEndian.PutUint64(buf[32:40], h.URLPtrPos)
	binary.LittleEndian.PutUint64(buf[40:48], h.TitleIdxPos)
	binary.LittleEndian.PutUint64(buf[48:56], h.ClusterPtrPos)
	binary.LittleEndian.PutUint64(buf[56:64], h.MimeListPos)
	binary.LittleEndian.PutUint32(buf[64:68], h.MainPage)
	binary.LittleEndian.PutUint32(buf[68:72], h.LayoutPage)
	binary.LittleEndian.PutUint64(buf[72:80], h.ChecksumPos)
	binary.LittleEndian.PutUint64(buf[80:88], h.GeoIdxPos)
	return buf
}

func decodeHeader(buf []byte) fileHeader {
	var h fileHeader
	h.Magic = binary.LittleEndian.Uint32(buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	copy(h.UUID[:], buf[8:24])
	h.ArticleCount = binary.LittleEndian.Uint32(buf[24:28])
	h.ClusterCount = binary.LittleEndian.Uint32(buf[28:32])
	h.URLPtrPos = binary.LittleEndian.Uint64(buf[32:40])
	h.TitleIdxPos = binary.LittleEndian.Uint64(buf[40:48])
	h.ClusterPtrPos = binary.LittleEndian.Uint64(buf[48:56])
	h.MimeListPos = binary.LittleEndian.Uint64(buf[56:64])
	h.MainPage = binary.LittleEndian.Uint32(buf[64:68])
	h.LayoutPage = binary.LittleEndian.Uint32(buf[68:72])
	h.ChecksumPos = binary.LittleEndian.Uint64(buf[72:80])
	h.GeoIdxPos = binary.LittleEndian.Uint64(buf[80:88])
	return h
}
