// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import "bytes"

// microDegreesToRad and quadraticMeanRadiusCM come from
// zimlib/src/geopoint.cpp verbatim: the constant that converts a
// micro-degree arc into radians, and the quadratic-mean Earth radius (in
// centimeters) used for the Haversine distance and enclosing-rectangle
// approximations.
const (
	microDegreesToRad    = 1.7453292519943295769236907684886e-08
	quadraticMeanRadiusCM = 637279756.0856
)

// latitudeFromMicroDegrees and longitudeFromMicroDegrees implement the
// fixed-point axis encoding from spec §4.4. Longitude uses the full
// symmetric ±180e6 microdegree range; latitude doubles the input first so
// it uses the same u32 width over its narrower ±90e6 range. The top of the
// range (+180e6, or +90e6 for latitude) saturates at the largest u32
// instead of wrapping to 0.
func longitudeFromMicroDegrees(v int32) uint32 {
	r := (uint64(int64(v)+180_000_000) << 32) / 360_000_000
	if r > 0xFFFFFFFF {
		r = 0xFFFFFFFF
	}
	return uint32(r)
}

func longitudeToMicroDegrees(v uint32) int32 {
	return int32((uint64(v)*360_000_000)>>32) - 180_000_000
}

func latitudeFromMicroDegrees(v int32) uint32 {
	return longitudeFromMicroDegrees(v * 2)
}

func latitudeToMicroDegrees(v uint32) int32 {
	return longitudeToMicroDegrees(v) / 2
}

// articleGeoPoint is one extracted coordinate, per spec §3.
type articleGeoPoint struct {
	Latitude  uint32
	Longitude uint32
	Index     uint32
}

// axisValue returns the coordinate on the given k-d tree axis: 0 =
// latitude, 1 = longitude, per spec §4.4.
func (p articleGeoPoint) axisValue(axis int) uint32 {
	if axis == 0 {
		return p.Latitude
	}
	return p.Longitude
}

var geoMetaTag = []byte(`<meta name="geo.position" content="`)

// extractGeoPoint scans blob for the geo.position meta tag described in
// spec §4.4 and, if found and well-formed, returns the encoded point. Any
// parse failure is MalformedInput (§7): it is silently ignored, not an
// error, because article bodies are arbitrary HTML.
func extractGeoPoint(blob []byte, index uint32) (articleGeoPoint, bool) {
	tagAt := bytes.Index(blob, geoMetaTag)
	if tagAt < 0 {
		return articleGeoPoint{}, false
	}
	rest := blob[tagAt+len(geoMetaTag):]

	lat, rest, ok := parseCoordinateMicroDegrees(rest)
	if !ok {
		return articleGeoPoint{}, false
	}
	if len(rest) == 0 || rest[0] != ';' {
		return articleGeoPoint{}, false
	}
	rest = rest[1:]

	lon, _, ok := parseCoordinateMicroDegrees(rest)
	if !ok {
		return articleGeoPoint{}, false
	}

	return articleGeoPoint{
		Latitude:  latitudeFromMicroDegrees(lat),
		Longitude: longitudeFromMicroDegrees(lon),
		Index:     index,
	}, true
}

// parseCoordinateMicroDegrees parses an optional sign, digits, an optional
// '.', and more digits, accumulating a fixed-point value with exactly 6
// digits beyond the decimal point (true microdegrees, matching the ±180e6 /
// ±90e6 ranges longitudeFromMicroDegrees and latitudeFromMicroDegrees
// expect): fewer are padded with trailing zeros, and parsing stops as soon
// as a 6th post-decimal digit has been consumed (spec §4.4). It returns
// ok==false if there isn't at least one digit.
func parseCoordinateMicroDegrees(text []byte) (value int32, rest []byte, ok bool) {
	negative := false
	if len(text) > 0 && text[0] == '-' {
		negative = true
		text = text[1:]
	}

	var v int32
	var decimalDigits uint
	var sawDot, sawDigit bool
	i := 0
loop:
	for i < len(text) {
		c := text[i]
		switch {
		case c == '.':
			if sawDot {
				break loop
			}
			sawDot = true
			i++
		case c >= '0' && c <= '9':
			sawDigit = true
			v = v*10 + int32(c-'0')
			i++
			if sawDot {
				decimalDigits++
				if decimalDigits == 6 {
					break loop
				}
			}
		default:
			break loop
		}
	}
	if !sawDigit {
		return 0, text, false
	}
	for ; decimalDigits < 6; decimalDigits++ {
		v *= 10
	}
	if negative {
		v = -v
	}
	return v, text[i:], true
}
