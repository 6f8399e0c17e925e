// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package writer builds a single self-contained archive of web-like
// content: articles identified by a namespace byte plus a URL, carrying
// titles, MIME types, blobs, redirects, and optional geographic
// coordinates. Once built, the archive lets a reader locate an article by
// URL, by title, or by geographic region in logarithmic time and stream
// its bytes with optional decompression.
//
// The package is organized as a pipeline of five stages that each consume
// the previous stage's final output:
//
//   - dirent table construction assigns every article a stable index
//     under two sort orders (URL and title) and resolves redirects
//     (dirent.go);
//   - the title index materializes the title sort order as a permutation
//     of URL-order indices (titleindex.go);
//   - the cluster packer groups compressible blobs into clusters and
//     spills them to a temporary file (clusterpacker.go, cluster.go);
//   - the geo-index builder extracts coordinates from article bodies and
//     serializes a balanced k-d tree over them (geopoint.go, kdtree.go);
//   - the layout writer computes every section's absolute offset and
//     emits the final archive, trailed by an MD5 digest (layout.go).
//
// Build orchestrates all five stages; query.go implements the read-side
// lookups (by URL, by title, by geo box, nearest-neighbor) that both the
// writer's own tests and any caller of a built archive can use. A full
// caching/lazy-loading reader is out of scope for this package.
package writer
