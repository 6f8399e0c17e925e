// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"context"
	"io"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// Build drains src and writes a complete archive to out, running the
// C1-C5 pipeline in strict order per spec §2/§5: dirent table, title
// index, cluster packing, geo-index, layout. out need not be a file - any
// io.Writer that accepts the whole stream works, since the layout writer
// never seeks backward into it (every offset is computed up front and
// only ever appended past).
func Build(ctx context.Context, src Source, out io.Writer, opts ...Option) error {
	cfg := defaultBuildConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.compression.Valid(); err != nil {
		return errors.Annotate(err).Reason("invalid build configuration").Err()
	}

	mimeTypes := newMimeTypeRegistry()

	logging.Infof(ctx, "openzim: collecting dirents")
	dirents, err := buildDirentTable(src, mimeTypes)
	if err != nil {
		return errors.Annotate(err).Reason("building dirent table").Err()
	}

	logging.Infof(ctx, "openzim: building title index (%d dirents)", len(dirents))
	titleIndex := buildTitleIndex(dirents)

	logging.Infof(ctx, "openzim: packing clusters")
	pack, err := packClusters(dirents, src, cfg.minChunkSize, cfg.compression)
	if err != nil {
		return errors.Annotate(err).Reason("packing clusters").Err()
	}
	defer pack.close()

	logging.Infof(ctx, "openzim: building geo index (%d points)", len(pack.geoPoints))
	geoIndex := buildGeoIndex(ctx, pack.geoPoints)

	mainPage := resolvePageAid(dirents, src.GetMainPage())
	layoutPage := resolvePageAid(dirents, src.GetLayoutPage())

	in := &layoutInput{
		dirents:    dirents,
		mimeTypes:  mimeTypes,
		titleIndex: titleIndex,
		pack:       pack,
		geoIndex:   geoIndex,
		uuid:       src.GetUUID(),
		mainPage:   mainPage,
		layoutPage: layoutPage,
	}

	logging.Infof(ctx, "openzim: writing layout")
	if err := writeLayout(out, in); err != nil {
		return errors.Annotate(err).Reason("writing layout").Err()
	}

	return pack.removeSpillFile()
}

// resolvePageAid looks up aid among the final dirents by linear scan
// (dirents are sorted by URL at this point, not by aid, and this runs at
// most twice per build) and returns its idx, or noPage if aid is empty or
// unresolved.
func resolvePageAid(dirents []*dirent, aid string) uint32 {
	if aid == "" {
		return noPage
	}
	for _, d := range dirents {
		if d.Aid == aid {
			return d.Idx
		}
	}
	return noPage
}
