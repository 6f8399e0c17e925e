// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import "sort"

// buildTitleIndex implements C2 (spec §4.2): a dense permutation of
// dirent indices, sorted by the title comparator. It holds only indices,
// never dirent bytes - the second of the "twin sort orders" from spec §9.
func buildTitleIndex(dirents []*dirent) []uint32 {
	idx := make([]uint32, len(dirents))
	for i := range idx {
		idx[i] = uint32(i)
	}
	sort.Slice(idx, func(i, j int) bool {
		return compareTitle(dirents[idx[i]], dirents[idx[j]]) < 0
	})
	return idx
}
