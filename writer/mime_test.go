// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMimeTypeRegistry(t *testing.T) {
	t.Parallel()

	Convey("intern assigns dense first-seen ids", t, func() {
		r := newMimeTypeRegistry()
		id0, err := r.intern("text/html")
		So(err, ShouldBeNil)
		So(id0, ShouldEqual, uint16(0))

		id1, err := r.intern("image/png")
		So(err, ShouldBeNil)
		So(id1, ShouldEqual, uint16(1))

		again, err := r.intern("text/html")
		So(err, ShouldBeNil)
		So(again, ShouldEqual, id0)
	})

	Convey("permutation sorts names lexicographically", t, func() {
		r := newMimeTypeRegistry()
		r.intern("text/html")  // id 0
		r.intern("image/png")  // id 1
		r.intern("audio/flac") // id 2

		newNames, perm := r.permutation()
		So(newNames, ShouldResemble, []string{"audio/flac", "image/png", "text/html"})
		// id 0 (text/html) now sits at position 2, id 1 (image/png) at
		// position 1, id 2 (audio/flac) at position 0.
		So(perm, ShouldResemble, []uint16{2, 1, 0})
	})

	Convey("rejects more than maxMimeTypes distinct names", t, func() {
		r := newMimeTypeRegistry()
		r.names = make([]string, maxMimeTypes)
		_, err := r.intern("one-too-many")
		So(err, ShouldNotBeNil)
	})
}
