// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"io"

	"github.com/klauspost/compress/zlib"
	"go.chromium.org/luci/common/errors"
)

// CompressionTag is the compression codec byte value written inside a
// cluster's framing, per spec §6.
type CompressionTag byte

// The four compression tags the wire format knows about.
const (
	CompressionNone  CompressionTag = 1
	CompressionZlib  CompressionTag = 2
	CompressionBzip2 CompressionTag = 3
	CompressionLzma  CompressionTag = 4
)

func (c CompressionTag) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionBzip2:
		return "Bzip2"
	case CompressionLzma:
		return "Lzma"
	default:
		return "CompressionTag(?)"
	}
}

// Valid reports whether c is one of the four tags the format defines.
func (c CompressionTag) Valid() error {
	switch c {
	case CompressionNone, CompressionZlib, CompressionBzip2, CompressionLzma:
		return nil
	}
	return errors.Reason("unknown compression tag 0x%(c)x").D("c", byte(c)).Err()
}

// newZlibReader opens a decompressing reader for a zlib-framed stream.
func newZlibReader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

// Writer returns a new compressing writer for the tag, following the same
// factory-method shape as the teacher's CompressionScheme.Writer. Bzip2
// and Lzma are part of the wire format but have no encoder available in
// this build (see DESIGN.md); they return an explicit error rather than
// silently falling back to CompressionNone.
func (c CompressionTag) Writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return writeCloseHook{w, nil}, nil
	case CompressionZlib:
		return zlib.NewWriter(w), nil
	case CompressionBzip2, CompressionLzma:
		return nil, errors.Reason("%(c)s compression is not built into this binary").D("c", c).Err()
	}
	return nil, c.Valid()
}
