// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"crypto/md5"
	"encoding/binary"
	"io"

	"go.chromium.org/luci/common/errors"
)

// layoutInput collects everything C5 needs: the final (URL-ordered)
// dirents, the interned MIME names, C3's cluster spill, C4's serialized
// geo-index bytes, the title permutation from C2, and the header fields
// that only become known once the earlier stages have run.
type layoutInput struct {
	dirents    []*dirent
	mimeTypes  *mimeTypeRegistry
	titleIndex []uint32
	pack       *clusterPackResult
	geoIndex   []byte
	uuid       [16]byte
	mainPage   uint32 // noPage if unresolved
	layoutPage uint32 // noPage if unresolved
}

// writeLayout implements C5 (spec §4.6 / §6): it computes every section's
// absolute offset, renumbers MIME ids to their sorted positions, and
// writes the nine sections in order to out, trailed by the MD5 digest of
// everything written before it.
func writeLayout(out io.Writer, in *layoutInput) error {
	newNames, perm := in.mimeTypes.permutation()
	for _, d := range in.dirents {
		if d.Kind == Article {
			d.MimeTypeIdx = perm[d.MimeTypeIdx]
		}
	}

	mimeListSize := 1 // list terminator NUL
	for _, n := range newNames {
		mimeListSize += len(n) + 1
	}

	direntSizes := make([]int, len(in.dirents))
	var direntsTotalSize int64
	for i, d := range in.dirents {
		direntSizes[i] = direntSize(d)
		direntsTotalSize += int64(direntSizes[i])
	}

	urlPtrSize := int64(len(in.dirents)) * 8
	titleIdxSize := int64(len(in.titleIndex)) * 4
	geoIndexSize := int64(len(in.geoIndex))
	clusterPtrSize := int64(len(in.pack.clusterOffsets)) * 8

	mimeListPos := uint64(headerSize)
	urlPtrPos := mimeListPos + uint64(mimeListSize)
	titleIdxPos := urlPtrPos + uint64(urlPtrSize)
	geoIdxPos := titleIdxPos + uint64(titleIdxSize)
	direntsBase := geoIdxPos + uint64(geoIndexSize)
	clusterPtrPos := direntsBase + uint64(direntsTotalSize)
	clusterDataBase := clusterPtrPos + uint64(clusterPtrSize)

	var clusterDataSize int64
	if !in.pack.isEmpty {
		clusterDataSize = in.pack.clustersSize
	}
	checksumPos := clusterDataBase + uint64(clusterDataSize)

	urlPtrs := make([]uint64, len(in.dirents))
	offset := direntsBase
	for i, size := range direntSizes {
		urlPtrs[i] = offset
		offset += uint64(size)
	}

	hdr := fileHeader{
		Magic:         headerMagic,
		Version:       headerVersion,
		UUID:          in.uuid,
		ArticleCount:  uint32(len(in.dirents)),
		ClusterCount:  uint32(len(in.pack.clusterOffsets)),
		URLPtrPos:     urlPtrPos,
		TitleIdxPos:   titleIdxPos,
		ClusterPtrPos: clusterPtrPos,
		MimeListPos:   mimeListPos,
		MainPage:      in.mainPage,
		LayoutPage:    in.layoutPage,
		ChecksumPos:   checksumPos,
		GeoIdxPos:     geoIdxPos,
	}

	h := md5.New()
	cw := &countingWriter{Writer: io.MultiWriter(out, h)}

	// 1. Header.
	if _, err := cw.Write(hdr.encode()); err != nil {
		return errors.Annotate(err).Reason("writing header").Err()
	}

	// 2. MIME list.
	for _, n := range newNames {
		if _, err := cw.Write(append([]byte(n), 0)); err != nil {
			return errors.Annotate(err).Reason("writing mime list").Err()
		}
	}
	if _, err := cw.Write([]byte{0}); err != nil {
		return errors.Annotate(err).Reason("writing mime list terminator").Err()
	}

	// 3. URL-pointer array.
	if err := writeUint64Array(cw, urlPtrs); err != nil {
		return errors.Annotate(err).Reason("writing url pointer array").Err()
	}

	// 4. Title index.
	if err := writeUint32Array(cw, in.titleIndex); err != nil {
		return errors.Annotate(err).Reason("writing title index").Err()
	}

	// 5. Geo-index bytes.
	if _, err := cw.Write(in.geoIndex); err != nil {
		return errors.Annotate(err).Reason("writing geo index").Err()
	}

	// 6. Dirent payloads, in URL order.
	for _, d := range in.dirents {
		if _, err := cw.Write(encodeDirent(d)); err != nil {
			return errors.Annotate(err).Reason("writing dirent payload for aid %(aid)q").D("aid", d.Aid).Err()
		}
	}

	// 7. Cluster-pointer array.
	clusterPtrs := make([]uint64, len(in.pack.clusterOffsets))
	for k, off := range in.pack.clusterOffsets {
		clusterPtrs[k] = clusterDataBase + off
	}
	if err := writeUint64Array(cw, clusterPtrs); err != nil {
		return errors.Annotate(err).Reason("writing cluster pointer array").Err()
	}

	// 8. Cluster data.
	if !in.pack.isEmpty {
		if _, err := in.pack.spill.Seek(0, io.SeekStart); err != nil {
			return errors.Annotate(err).Reason("seeking cluster spill file").Err()
		}
		if _, err := io.Copy(cw, in.pack.spill); err != nil {
			return errors.Annotate(err).Reason("streaming cluster data").Err()
		}
	}

	// 9. Checksum: MD5 of everything written above, written raw (not
	// itself hashed).
	if _, err := out.Write(h.Sum(nil)); err != nil {
		return errors.Annotate(err).Reason("writing checksum").Err()
	}

	return nil
}

func writeUint64Array(w io.Writer, vals []uint64) error {
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], v)
	}
	_, err := w.Write(buf)
	return err
}

func writeUint32Array(w io.Writer, vals []uint32) error {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], v)
	}
	_, err := w.Write(buf)
	return err
}
