// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMicroDegreeRoundTrip(t *testing.T) {
	t.Parallel()

	Convey("longitude round-trips within 1 microdegree", t, func() {
		for _, v := range []int32{0, 1, -1, 180_000_000, -180_000_000, 115761240, -73_935_242} {
			got := longitudeToMicroDegrees(longitudeFromMicroDegrees(v))
			So(abs32(got-v), ShouldBeLessThanOrEqualTo, 1)
		}
	})

	Convey("latitude round-trips within 1 microdegree", t, func() {
		for _, v := range []int32{0, 1, -1, 90_000_000, -90_000_000, 40_712_800, 48_137_154} {
			got := latitudeToMicroDegrees(latitudeFromMicroDegrees(v))
			So(abs32(got-v), ShouldBeLessThanOrEqualTo, 1)
		}
	})
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestExtractGeoPoint(t *testing.T) {
	t.Parallel()

	Convey("well-formed meta tag", t, func() {
		blob := []byte(`<html><head><meta name="geo.position" content="48.137154;11.576124"></head></html>`)
		p, ok := extractGeoPoint(blob, 7)
		So(ok, ShouldBeTrue)
		So(p.Index, ShouldEqual, uint32(7))
		So(abs32(latitudeToMicroDegrees(p.Latitude)-48137154), ShouldBeLessThanOrEqualTo, 1)
		So(abs32(longitudeToMicroDegrees(p.Longitude)-11576124), ShouldBeLessThanOrEqualTo, 1)
	})

	Convey("negative coordinates", t, func() {
		blob := []byte(`<meta name="geo.position" content="-33.8688;151.2093">`)
		p, ok := extractGeoPoint(blob, 0)
		So(ok, ShouldBeTrue)
		So(latitudeToMicroDegrees(p.Latitude), ShouldBeLessThan, 0)
		So(longitudeToMicroDegrees(p.Longitude), ShouldBeGreaterThan, 0)
	})

	Convey("missing tag", t, func() {
		_, ok := extractGeoPoint([]byte("<html>no geo here</html>"), 0)
		So(ok, ShouldBeFalse)
	})

	Convey("malformed coordinate is silently ignored", t, func() {
		blob := []byte(`<meta name="geo.position" content="abc;123">`)
		_, ok := extractGeoPoint(blob, 0)
		So(ok, ShouldBeFalse)
	})

	Convey("missing semicolon separator", t, func() {
		blob := []byte(`<meta name="geo.position" content="48.1">`)
		_, ok := extractGeoPoint(blob, 0)
		So(ok, ShouldBeFalse)
	})
}

func TestParseCoordinateMicroDegrees(t *testing.T) {
	t.Parallel()

	Convey("pads fewer than 6 decimal digits", t, func() {
		v, rest, ok := parseCoordinateMicroDegrees([]byte("1.5;"))
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, int32(1_500_000))
		So(string(rest), ShouldEqual, ";")
	})

	Convey("stops after the 6th decimal digit", t, func() {
		v, rest, ok := parseCoordinateMicroDegrees([]byte("1.23456789;"))
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, int32(1234567))
		So(string(rest), ShouldEqual, "89;")
	})

	Convey("integer with no fractional part", t, func() {
		v, _, ok := parseCoordinateMicroDegrees([]byte("48"))
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, int32(48_000_000))
	})

	Convey("negative sign", t, func() {
		v, _, ok := parseCoordinateMicroDegrees([]byte("-1.5"))
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, int32(-1_500_000))
	})

	Convey("no digits at all", t, func() {
		_, _, ok := parseCoordinateMicroDegrees([]byte(";rest"))
		So(ok, ShouldBeFalse)
	})
}
