// Copyright 2025 Quilt ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/quilt-ml/quilt/internal/tensor"
)

// Backend executes dense numeric work on flat buffers, given the block
// metadata computed by the engine. Every call carries the complete
// per-sector work list so implementations are free to parallelize
// across sectors.
type Backend = tensor.Backend

// Metadata descriptors passed to Backend methods.

// DotMeta describes one sector pair of a batched matrix product.
type DotMeta = tensor.DotMeta

// DotMask carries the boolean selections compressing one sector pair's
// contracted dimension.
type DotMask = tensor.DotMask

// DiagMeta describes the action of a diagonal tensor on one block.
type DiagMeta = tensor.DiagMeta

// TraceMeta describes one block's contribution to a partial trace.
type TraceMeta = tensor.TraceMeta

// MergeChunk moves one block into its slot of a merged sector matrix.
type MergeChunk = tensor.MergeChunk

// UnmergeChunk cuts one block back out of a merged sector matrix.
type UnmergeChunk = tensor.UnmergeChunk

// TransposeChunk permutes one block's legs.
type TransposeChunk = tensor.TransposeChunk

// SliceMeta copies one contiguous element range during compaction.
type SliceMeta = tensor.SliceMeta
