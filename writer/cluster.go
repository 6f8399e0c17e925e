// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"encoding/binary"
	"io"

	"go.chromium.org/luci/common/errors"
)

// cluster is the ordered list of blobs plus a compression tag from spec
// §3. It exposes exactly the operations the cluster codec contract (§6)
// names: append, byteSize, count, clear. Everything past the compression
// tag byte is opaque to the rest of the writer - C3 and C5 only ever call
// WriteTo - but cluster.go owns a concrete framing (a blob-offset table
// followed by the concatenated blob bytes, mirroring the teacher's
// varint-length block-framing idiom) so the archive is actually
// self-describing on disk.
type cluster struct {
	compression CompressionTag
	blobs       [][]byte
	size        int64 // sum of len(blob) across blobs
}

func newCluster(compression CompressionTag) *cluster {
	return &cluster{compression: compression}
}

// append adds blob to the cluster.
func (c *cluster) append(blob []byte) {
	c.blobs = append(c.blobs, blob)
	c.size += int64(len(blob))
}

// byteSize returns the total number of uncompressed blob bytes buffered
// so far - the quantity C3 compares against minChunkSize*1024.
func (c *cluster) byteSize() int64 { return c.size }

// count returns the number of blobs buffered so far.
func (c *cluster) count() int { return len(c.blobs) }

// clear empties the cluster but keeps its compression tag, per spec
// §4.3's "clear it and keep its compression tag".
func (c *cluster) clear() {
	c.blobs = nil
	c.size = 0
}

// setCompression overrides the compression tag. C3 does not call it: its
// uncompressed singleton clusters are created with newCluster.
func (c *cluster) setCompression(tag CompressionTag) { c.compression = tag }

// WriteTo serializes the cluster: one compression-tag byte, then (through
// that codec) a little-endian blob count, an offset table of
// blobCount+1 uint32s (offsets[0]==0, offsets[n]==total blob bytes), and
// the concatenated blob bytes.
func (c *cluster) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{Writer: w}
	if _, err := cw.Write([]byte{byte(c.compression)}); err != nil {
		return cw.n, err
	}

	body, err := c.compression.Writer(cw)
	if err != nil {
		return cw.n, err
	}

	if err := writeClusterBody(body, c.blobs); err != nil {
		return cw.n, err
	}
	if err := body.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func writeClusterBody(w io.Writer, blobs [][]byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(blobs)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	var off uint32
	for i := 0; i <= len(blobs); i++ {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], off)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
		if i < len(blobs) {
			off += uint32(len(blobs[i]))
		}
	}

	for _, b := range blobs {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// readCluster decodes a cluster previously written by WriteTo. It is used
// by the writer's own round-trip tests; a full caching reader is out of
// scope for this package.
func readCluster(r io.Reader) (compression CompressionTag, blobs [][]byte, err error) {
	var tagBuf [1]byte
	if _, err = io.ReadFull(r, tagBuf[:]); err != nil {
		return
	}
	compression = CompressionTag(tagBuf[0])
	if err = compression.Valid(); err != nil {
		return
	}

	var body io.Reader
	switch compression {
	case CompressionNone:
		body = r
	case CompressionZlib:
		zr, zerr := zlibReader(r)
		if zerr != nil {
			return compression, nil, zerr
		}
		body = zr
	default:
		return compression, nil, errors.Reason("%(c)s decompression is not built into this binary").D("c", compression).Err()
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		return
	}
	if len(buf) < 4 {
		return compression, nil, errors.New("truncated cluster body")
	}
	count := binary.LittleEndian.Uint32(buf[:4])
	buf = buf[4:]
	needOffsets := int(count+1) * 4
	if len(buf) < needOffsets {
		return compression, nil, errors.New("truncated cluster offset table")
	}
	offsets := make([]uint32, count+1)
	for i := range offsets {
		offsets[i] = binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
	}
	data := buf[needOffsets:]
	blobs = make([][]byte, count)
	for i := uint32(0); i < count; i++ {
		if offsets[i] > offsets[i+1] || int(offsets[i+1]) > len(data) {
			return compression, nil, errors.New("corrupt cluster offset table")
		}
		blobs[i] = data[offsets[i]:offsets[i+1]]
	}
	return compression, blobs, nil
}

func zlibReader(r io.Reader) (io.Reader, error) {
	return newZlibReader(r)
}
