// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

// buildConfig holds the tunables spec §6's CLI surface exposes
// (--min-chunk-size/-s, --zlib/--bzip2/--lzma), with the same defaults:
// minChunkSize = 960, and the strongest compression enabled at build time
// or None.
type buildConfig struct {
	minChunkSize int
	compression  CompressionTag
}

func defaultBuildConfig() buildConfig {
	return buildConfig{
		minChunkSize: 960,
		compression:  CompressionZlib,
	}
}

// Option configures Build, following the teacher's functional-options
// shape (sar.CreateOption).
type Option func(*buildConfig)

// WithMinChunkSize sets the cluster flush threshold in KiB (spec §4.3's
// minChunkSize*1024 comparison). The CLI's --min-chunk-size/-s map here.
func WithMinChunkSize(kib int) Option {
	return func(c *buildConfig) { c.minChunkSize = kib }
}

// WithCompression selects the codec used for compressible clusters. The
// CLI's --zlib/--bzip2/--lzma map here; CompressionNone disables cluster
// compression entirely.
func WithCompression(tag CompressionTag) Option {
	return func(c *buildConfig) { c.compression = tag }
}
