// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import "io"

// writeCloseHook adapts an io.Writer into an io.WriteCloser by running
// clsFn (if non-nil) on Close. Adapted from the teacher's sardata package,
// where it backs both the compression and checksum block writers.
type writeCloseHook struct {
	io.Writer

	clsFn func() error
}

func (c writeCloseHook) Close() error {
	if c.clsFn != nil {
		return c.clsFn()
	}
	return nil
}

// countingWriter tracks the number of bytes written, mirroring the
// teacher's use of luci-go's iotools.CountingWriter around compressing
// writers so the compressed block length can be recorded without a
// separate pass.
type countingWriter struct {
	io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	c.n += int64(n)
	return n, err
}
