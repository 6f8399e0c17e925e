// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package writer

import (
	"os"

	"go.chromium.org/luci/common/errors"
)

// clusterPackResult is C3's final output: the spill file (still open,
// positioned at EOF) holding every serialized cluster, the byte offset of
// each cluster within it, and the geo points harvested along the way for
// C4 to consume.
type clusterPackResult struct {
	spill          *os.File
	clusterOffsets []uint64
	clustersSize   int64
	isEmpty        bool
	geoPoints      []articleGeoPoint
}

// packClusters implements C3 (spec §4.3): walk the URL-sorted dirents,
// scan each Article's blob for a geo point, and pack compressible blobs
// into clusters flushed once they reach minChunkSize*1024 bytes, emitting
// singleton uncompressed clusters for articles marked shouldn't-compress.
func packClusters(dirents []*dirent, src Source, minChunkSize int, compression CompressionTag) (*clusterPackResult, error) {
	spill, err := os.CreateTemp("", "openzim-clusters-*")
	if err != nil {
		return nil, errors.Annotate(err).Reason("creating cluster spill file").Err()
	}

	res := &clusterPackResult{spill: spill, isEmpty: true}
	cw := &countingWriter{Writer: spill}
	pending := newCluster(compression)

	flushPending := func() error {
		res.clusterOffsets = append(res.clusterOffsets, uint64(cw.n))
		if _, err := pending.WriteTo(cw); err != nil {
			return errors.Annotate(err).Reason("flushing pending cluster").Err()
		}
		pending.clear()
		return nil
	}

	for _, d := range dirents {
		if d.Kind != Article {
			continue
		}

		blob, err := src.GetData(d.Aid)
		if err != nil {
			spill.Close()
			return nil, errors.Annotate(err).Reason("reading blob for aid %(aid)q").D("aid", d.Aid).Err()
		}

		if gp, ok := extractGeoPoint(blob, d.Idx); ok {
			res.geoPoints = append(res.geoPoints, gp)
		}

		if len(blob) > 0 {
			res.isEmpty = false
		}

		if d.Compress {
			d.Cluster = uint32(len(res.clusterOffsets))
			pending.append(blob)
			d.BlobIdx = uint32(pending.count() - 1)

			if pending.byteSize() >= int64(minChunkSize)*1024 {
				if err := flushPending(); err != nil {
					spill.Close()
					return nil, err
				}
			}
			continue
		}

		if pending.count() > 0 {
			if err := flushPending(); err != nil {
				spill.Close()
				return nil, err
			}
		}

		d.Cluster = uint32(len(res.clusterOffsets))
		res.clusterOffsets = append(res.clusterOffsets, uint64(cw.n))
		singleton := newCluster(CompressionNone)
		singleton.append(blob)
		if _, err := singleton.WriteTo(cw); err != nil {
			spill.Close()
			return nil, errors.Annotate(err).Reason("writing singleton cluster for aid %(aid)q").D("aid", d.Aid).Err()
		}
		d.BlobIdx = 0
	}

	if pending.count() > 0 {
		if err := flushPending(); err != nil {
			spill.Close()
			return nil, err
		}
	}

	res.clustersSize = cw.n
	return res, nil
}

// close closes the spill file's handle without deleting the file; called
// once the layout writer has streamed it into the final archive, or on
// abort along a path that didn't already close it. Only removeSpillFile
// deletes it, so on abort the file stays on disk for inspection.
func (r *clusterPackResult) close() error {
	if r == nil || r.spill == nil {
		return nil
	}
	return r.spill.Close()
}

func (r *clusterPackResult) removeSpillFile() error {
	if r == nil || r.spill == nil {
		return nil
	}
	return os.Remove(r.spill.Name())
}
