// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package openzim builds self-contained web-content archives: a single
// file from which an article can be located by URL, by title, or by
// geographic region in logarithmic time, with its bytes streamed out
// through optional decompression.
//
// The archive writer lives in package writer
// (github.com/peter-x/openzim/writer) and runs a five-stage pipeline:
//   - dirent table builder: drains a Source, assigns dense indices, and
//     resolves redirects
//   - title index: a permutation of dirent indices in title order
//   - cluster packer: groups compressible article blobs into clusters,
//     spilling them to a temporary file
//   - geo-index builder: extracts geo.position meta tags and serializes
//     them into a k-d tree
//   - layout writer: computes every section's absolute offset and emits
//     the final archive, trailed by an MD5 checksum
//
// cmd/zimwriterfs (github.com/peter-x/openzim/cmd/zimwriterfs) is a CLI
// front-end that feeds a directory tree into the writer.
//
// It has a fairly basic on-disk format:
//   * fixed-size file header (magic, version, uuid, section offsets)
//   * MIME type list
//   * URL-pointer array, title index, geo-index bytes
//   * dirent payloads, in URL order
//   * cluster-pointer array and cluster data
//   * trailing MD5 checksum
//
// writer/layout.go writes these sections, in this order.
package openzim
