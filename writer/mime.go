// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"sort"

	"go.chromium.org/luci/common/errors"
)

// maxMimeTypes is the most distinct MIME types the registry accepts;
// interning one more is an error (§7: InternalConsistency above this).
const maxMimeTypes = 65534

// mimeTypeRegistry is the two-way name<->id mapping described in spec §3.
// Ids are assigned densely in first-seen order; permutation re-sorts names
// lexicographically and returns the permutation induced on the ids, per
// §4.6 step 2.
type mimeTypeRegistry struct {
	idOf  map[string]uint16
	names []string // names[id] == name, insertion order
}

func newMimeTypeRegistry() *mimeTypeRegistry {
	return &mimeTypeRegistry{
		idOf: map[string]uint16{},
	}
}

// intern returns the dense id for name, assigning a new one in
// first-seen order if necessary.
func (m *mimeTypeRegistry) intern(name string) (uint16, error) {
	if id, ok := m.idOf[name]; ok {
		return id, nil
	}
	if len(m.names) >= maxMimeTypes {
		return 0, errors.Reason("too many distinct MIME types (> %(max)d)").
			D("max", maxMimeTypes).Err()
	}
	id := uint16(len(m.names))
	m.idOf[name] = id
	m.names = append(m.names, name)
	return id, nil
}

// permutation computes newNames (lexicographically sorted) and perm, where
// perm[oldID] is oldID's position in newNames - exactly §4.6 step 2's
// "oldNames"/"newNames"/"perm" construction.
func (m *mimeTypeRegistry) permutation() (newNames []string, perm []uint16) {
	newNames = make([]string, len(m.names))
	copy(newNames, m.names)
	sort.Strings(newNames)

	posInNew := make(map[string]uint16, len(newNames))
	for i, n := range newNames {
		posInNew[n] = uint16(i)
	}

	perm = make([]uint16, len(m.names))
	for oldID, name := range m.names {
		perm[oldID] = posInNew[name]
	}
	return newNames, perm
}
