// Copyright 2026 The openzim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Command zimwriterfs builds an archive from a directory tree, in the
// spirit of zimlib's zimwriterfs: point it at a directory of static
// content and it produces a single self-contained archive file.
package main

import (
	"context"
	"os"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"github.com/spf13/pflag"

	"github.com/peter-x/openzim/writer"
)

func main() {
	ctx := context.Background()

	if err := run(ctx, os.Args[1:]); err != nil {
		logging.Errorf(ctx, "zimwriterfs: %s", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("zimwriterfs", pflag.ContinueOnError)

	minChunkSize := fs.IntP("min-chunk-size", "s", 960, "minimum cluster size in KiB before flushing")
	useZlib := fs.Bool("zlib", true, "compress clusters with zlib")
	useBzip2 := fs.Bool("bzip2", false, "compress clusters with bzip2 (not built into this binary)")
	useLzma := fs.Bool("lzma", false, "compress clusters with lzma (not built into this binary)")
	welcome := fs.String("welcome", "", "URL (relative to the source root) of the main/welcome page")
	favicon := fs.String("favicon", "", "URL (relative to the source root) of the favicon/layout page")
	language := fs.String("language", "", "archive language metadata")
	title := fs.String("title", "", "archive title metadata")
	description := fs.String("description", "", "archive description metadata")
	creator := fs.String("creator", "", "archive creator metadata")
	publisher := fs.String("publisher", "", "archive publisher metadata")
	tags := fs.String("tags", "", "archive tags metadata")
	_ = fs.Bool("withoutFTIndex", false, "accepted for compatibility; this build never indexes for full-text search")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.Reason("usage: zimwriterfs [flags] <source-dir> <output-file>").Err()
	}
	sourceDir, outPath := fs.Arg(0), fs.Arg(1)

	compression := writer.CompressionNone
	switch {
	case *useLzma:
		compression = writer.CompressionLzma
	case *useBzip2:
		compression = writer.CompressionBzip2
	case *useZlib:
		compression = writer.CompressionZlib
	}

	src, err := newFSSource(sourceDir, metadata{
		welcome:     *welcome,
		favicon:     *favicon,
		language:    *language,
		title:       *title,
		description: *description,
		creator:     *creator,
		publisher:   *publisher,
		tags:        *tags,
	})
	if err != nil {
		return errors.Annotate(err).Reason("reading source tree").Err()
	}

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Annotate(err).Reason("creating output file %(path)q").D("path", outPath).Err()
	}
	defer out.Close()

	logging.Infof(ctx, "zimwriterfs: building %s from %s", outPath, sourceDir)
	if err := writer.Build(ctx, src, out,
		writer.WithMinChunkSize(*minChunkSize),
		writer.WithCompression(compression),
	); err != nil {
		return errors.Annotate(err).Reason("building archive").Err()
	}

	return nil
}
