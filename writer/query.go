// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"encoding/binary"
	"math"
	"sort"

	"go.chromium.org/luci/common/errors"
)

// FindByURL implements the find-by-URL query from spec §4.5: binary search
// on (namespace, url) over the final URL-ordered dirents. On a miss it
// still returns the lower-bound position.
func FindByURL(dirents []*dirent, namespace byte, url []byte) (pos int, found bool) {
	probe := &dirent{Namespace: namespace, URL: url}
	pos = sort.Search(len(dirents), func(i int) bool { return compareURL(dirents[i], probe) >= 0 })
	found = pos < len(dirents) && dirents[pos].Namespace == namespace && string(dirents[pos].URL) == string(url)
	return pos, found
}

// FindByTitle implements the find-by-title query from spec §4.5: binary
// search via the title index built by C2.
func FindByTitle(dirents []*dirent, titleIndex []uint32, namespace byte, title []byte) (pos int, found bool) {
	probe := &dirent{Namespace: namespace, Title: title}
	pos = sort.Search(len(titleIndex), func(i int) bool {
		return compareTitle(dirents[titleIndex[i]], probe) >= 0
	})
	found = pos < len(titleIndex) && dirents[titleIndex[pos]].Namespace == namespace &&
		string(dirents[titleIndex[pos]].sortTitle()) == string(probe.sortTitle())
	return pos, found
}

// geoIndexView is a parsed handle on C4's serialized byte stream, letting
// FindByGeoArea/FindClosest walk the pre-order k-d tree without ever
// copying it into a tree of Go objects.
type geoIndexView struct {
	buf   []byte
	start uint32
	end   uint32
}

func newGeoIndexView(buf []byte) (*geoIndexView, error) {
	if len(buf) < geoIndexHeaderSize {
		return nil, errors.Reason("geo index buffer too short (%(n)d bytes)").D("n", len(buf)).Err()
	}
	count := binary.LittleEndian.Uint32(buf[0:4])
	if count != 1 {
		return nil, errors.Reason("geo index declares %(n)d trees, only 1 is supported").D("n", count).Err()
	}
	return &geoIndexView{
		buf:   buf,
		start: binary.LittleEndian.Uint32(buf[4:8]),
		end:   binary.LittleEndian.Uint32(buf[8:12]),
	}, nil
}

func (v *geoIndexView) u32(off uint32) uint32 {
	return binary.LittleEndian.Uint32(v.buf[off : off+4])
}

// FindByGeoArea implements spec §4.5's DFS over the serialized k-d tree: at
// an internal node with axis d and pivot m, descend right when
// maxPt.axis[d] >= m, left when minPt.axis[d] < m; at a leaf, emit points
// inside the closed rectangle. Stops as soon as len(out) == limit,
// reporting whether the limit (rather than tree exhaustion) caused the
// stop.
func FindByGeoArea(v *geoIndexView, minPt, maxPt articleGeoPoint, limit int) (out []articleGeoPoint, limited bool) {
	if v.start == v.end {
		return nil, false
	}
	walkGeoArea(v, v.start, 0, minPt, maxPt, limit, &out, &limited)
	return out, limited
}

func walkGeoArea(v *geoIndexView, off uint32, d int, minPt, maxPt articleGeoPoint, limit int, out *[]articleGeoPoint, limited *bool) {
	if len(*out) >= limit {
		*limited = true
		return
	}

	marker := v.u32(off)
	if marker == 0 {
		count := v.u32(off + 4)
		p := off + 8
		for i := uint32(0); i < count; i++ {
			if len(*out) >= limit {
				*limited = true
				return
			}
			lat := v.u32(p)
			lon := v.u32(p + 4)
			idx := v.u32(p + 8)
			p += 12
			if lat >= minPt.Latitude && lat <= maxPt.Latitude && lon >= minPt.Longitude && lon <= maxPt.Longitude {
				*out = append(*out, articleGeoPoint{Latitude: lat, Longitude: lon, Index: idx})
			}
		}
		return
	}

	pivot := marker
	rightStart := v.u32(off + 4)
	leftStart := off + 8
	axis := d % 2

	var minAxis, maxAxis uint32
	if axis == 0 {
		minAxis, maxAxis = minPt.Latitude, maxPt.Latitude
	} else {
		minAxis, maxAxis = minPt.Longitude, maxPt.Longitude
	}

	if minAxis < pivot {
		walkGeoArea(v, leftStart, d+1, minPt, maxPt, limit, out, limited)
	}
	if len(*out) >= limit {
		*limited = true
		return
	}
	if maxAxis >= pivot {
		walkGeoArea(v, rightStart, d+1, minPt, maxPt, limit, out, limited)
	}
}

// enclosingPseudoRectangle implements the glossary's spherical-cap
// approximation: lat half-width = asin(r/R)/µdegToRad, lon half-width
// scaled by cos(lat).
func enclosingPseudoRectangle(center articleGeoPoint, radiusCM float64) (minPt, maxPt articleGeoPoint) {
	latRad := float64(latitudeToMicroDegrees(center.Latitude)) * microDegreesToRad
	latHalfWidth := math.Asin(math.Min(radiusCM/quadraticMeanRadiusCM, 1)) / microDegreesToRad

	lonHalfWidth := latHalfWidth
	if c := math.Cos(latRad); c > 1e-9 {
		lonHalfWidth = latHalfWidth / c
	} else {
		lonHalfWidth = 180_000_000
	}

	latMicro := float64(latitudeToMicroDegrees(center.Latitude))
	lonMicro := float64(longitudeToMicroDegrees(center.Longitude))

	minLat := clampMicroDegrees(latMicro-latHalfWidth, -90_000_000, 90_000_000)
	maxLat := clampMicroDegrees(latMicro+latHalfWidth, -90_000_000, 90_000_000)
	minLon := clampMicroDegrees(lonMicro-lonHalfWidth, -180_000_000, 180_000_000)
	maxLon := clampMicroDegrees(lonMicro+lonHalfWidth, -180_000_000, 180_000_000)

	minPt = articleGeoPoint{Latitude: latitudeFromMicroDegrees(minLat), Longitude: longitudeFromMicroDegrees(minLon)}
	maxPt = articleGeoPoint{Latitude: latitudeFromMicroDegrees(maxLat), Longitude: longitudeFromMicroDegrees(maxLon)}
	return minPt, maxPt
}

func clampMicroDegrees(v, lo, hi float64) int32 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return int32(v)
}

const (
	startRadiusCM = 100 * 100          // 100 m
	maxRadiusCM   = 10_000_000 * 100   // 10,000 km
)

// FindClosest implements spec §4.5's find-closest: widen the search radius
// (starting at 100 m, doubling while under 10,000 km) until at least limit
// points are found, then sort by great-circle (Haversine) distance and
// keep the first limit. Each area query is capped at 4*limit points.
func FindClosest(v *geoIndexView, center articleGeoPoint, limit int) []articleGeoPoint {
	radius := float64(startRadiusCM)
	var candidates []articleGeoPoint
	for {
		minPt, maxPt := enclosingPseudoRectangle(center, radius)
		pts, _ := FindByGeoArea(v, minPt, maxPt, 4*limit)
		candidates = pts
		if len(candidates) >= limit || radius >= maxRadiusCM {
			break
		}
		radius *= 2
	}

	sort.Slice(candidates, func(i, j int) bool {
		return haversineCM(center, candidates[i]) < haversineCM(center, candidates[j])
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// haversineCM returns the great-circle distance in centimeters between two
// fixed-point geo points, converting back to radians first.
func haversineCM(a, b articleGeoPoint) float64 {
	aLat, aLon := pointToRad(a)
	bLat, bLon := pointToRad(b)
	dLat := bLat - aLat
	dLon := bLon - aLon
	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(aLat)*math.Cos(bLat)*sinDLon*sinDLon
	return 2 * quadraticMeanRadiusCM * math.Asin(math.Sqrt(h))
}

func pointToRad(p articleGeoPoint) (lat, lon float64) {
	lat = float64(latitudeToMicroDegrees(p.Latitude)) * microDegreesToRad
	lon = float64(longitudeToMicroDegrees(p.Longitude)) * microDegreesToRad
	return lat, lon
}
