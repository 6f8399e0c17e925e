// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"context"
	"encoding/binary"
	"sort"

	"go.chromium.org/luci/common/logging"
)

// leafThreshold is the point-count below which a sub-range is always
// serialized as a leaf, per spec §4.4.
const leafThreshold = 10

// geoIndexHeaderSize is the three-uint32 prefix (indexCount, start_0,
// end_0) every geo-index blob carries, per spec §4.4.
const geoIndexHeaderSize = 12

// geoScratch is the seekable scratch buffer the k-d tree serializer
// writes into. Offsets inside it are back-patched once the size of a
// sub-tree is known, per spec §9's design note; a flat byte slice with
// explicit overwrite-at-offset is all that requires.
type geoScratch struct {
	buf []byte
}

func (s *geoScratch) pos() int { return len(s.buf) }

func (s *geoScratch) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *geoScratch) patchU32(offset int, v uint32) {
	binary.LittleEndian.PutUint32(s.buf[offset:offset+4], v)
}

func (s *geoScratch) writePoint(p articleGeoPoint) {
	s.writeU32(p.Latitude)
	s.writeU32(p.Longitude)
	s.writeU32(p.Index)
}

// buildGeoIndex implements C4's serialization (spec §4.4): a three-u32
// header followed by the pre-order k-d tree over points. points is
// consumed (its order is scrambled by the per-axis sorts); pass a copy if
// the caller still needs the original order.
func buildGeoIndex(ctx context.Context, points []articleGeoPoint) []byte {
	s := &geoScratch{}
	s.writeU32(1)                  // indexCount
	s.writeU32(geoIndexHeaderSize) // start_0
	s.writeU32(0)                  // end_0, patched below

	// An archive with no geo points at all has an empty root partition:
	// start_0 == end_0, with no leaf node written, per spec §8 scenario
	// 1's exact byte count for an empty source.
	if len(points) > 0 {
		writeGeoIndexPart(ctx, s, points, 0)
	}

	s.patchU32(8, uint32(s.pos()))
	return s.buf
}

func pointsEqualXY(a, b articleGeoPoint) bool {
	return a.Latitude == b.Latitude && a.Longitude == b.Longitude
}

func allPointsEqual(points []articleGeoPoint) bool {
	for _, p := range points[1:] {
		if !pointsEqualXY(p, points[0]) {
			return false
		}
	}
	return true
}

func writeLeaf(s *geoScratch, points []articleGeoPoint) {
	s.writeU32(0)
	s.writeU32(uint32(len(points)))
	for _, p := range points {
		s.writePoint(p)
	}
}

// writeGeoIndexPart recursively serializes the sub-range points at tree
// depth d, writing into s. The splitting axis is d%2 (0=latitude,
// 1=longitude).
func writeGeoIndexPart(ctx context.Context, s *geoScratch, points []articleGeoPoint, d int) {
	if len(points) < leafThreshold || allPointsEqual(points) {
		writeLeaf(s, points)
		return
	}

	axis := d % 2
	sort.Slice(points, func(i, j int) bool { return points[i].axisValue(axis) < points[j].axisValue(axis) })

	medianIdx := len(points) / 2
	medianValue := points[medianIdx].axisValue(axis)

	if medianValue == 0 {
		// Zero is reserved for the leaf marker; it cannot be a pivot.
		logging.Warningf(ctx, "geo index: dropping point with zero %s axis value, too many small coordinates", axisName(axis))
		writeGeoIndexPart(ctx, s, points[1:], d)
		return
	}

	if medianValue == points[0].axisValue(axis) {
		for medianIdx < len(points) && points[medianIdx].axisValue(axis) == points[0].axisValue(axis) {
			medianIdx++
		}
		if medianIdx == len(points) {
			// The pivot would be non-discriminating: every point in range
			// shares the same axis value as the first. Fall back to a
			// leaf over the whole (still >= leafThreshold) range.
			writeLeaf(s, points)
			return
		}
		medianValue = points[medianIdx].axisValue(axis)
	} else {
		for medianIdx > 0 && points[medianIdx-1].axisValue(axis) == medianValue {
			medianIdx--
		}
	}

	s.writeU32(medianValue)
	offsetPos := s.pos()
	s.writeU32(0) // placeholder, patched below

	writeGeoIndexPart(ctx, s, points[:medianIdx], d+1)

	rightStart := uint32(s.pos())
	s.patchU32(offsetPos, rightStart)

	writeGeoIndexPart(ctx, s, points[medianIdx:], d+1)
}

func axisName(axis int) string {
	if axis == 0 {
		return "latitude"
	}
	return "longitude"
}
