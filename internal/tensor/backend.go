package tensor

// Metadata descriptors handed to the numeric backend. The engine always
// passes the complete per-sector work list in one call so the backend is
// free to parallelize or vectorize across sectors; the engine itself
// never loops over sectors around a backend call.

// DotMeta describes one matched sector pair of a batched matrix product:
// C[COff:COff+M*N] = A[AOff:...] (M x K) * B[BOff:...] (K x N).
type DotMeta struct {
	COff, AOff, BOff int
	M, K, N          int
}

// DotMask carries the boolean column/row selections applied to one
// sector pair before the multiply, when the operands' fusion histories
// diverge. The true-counts of A and B always agree.
type DotMask struct {
	A, B []bool
}

// DiagMeta describes the elementwise action of a diagonal tensor on one
// block of a target tensor. The block is addressed as (Pre, Dim, Post)
// around the broadcast axis; the diagonal values live at
// [DiagOff, DiagOff+Dim). For mask application, NewDim is the number of
// nonzero diagonal entries surviving on that sector.
type DiagMeta struct {
	DstOff  int
	SrcOff  int
	Pre     int
	Dim     int
	Post    int
	DiagOff int
	NewDim  int
}

// TraceMeta describes one block's contribution to a partial trace.
// Off12 enumerates element offsets (within the source block) of the
// traced index pairs to sum over; OffOut enumerates offsets of the
// surviving elements. Divergent fusion histories are already folded
// into Off12 by the mask calculator.
type TraceMeta struct {
	DstOff  int
	DstSize int
	SrcOff  int
	Off12   []int
	OffOut  []int
}

// MergeChunk moves one source block into its slot of a merged
// (row, column) sector matrix, transposing its legs into
// (row legs..., column legs...) order on the way. Axes lists the source
// axes in destination order and RowAxes is the split point.
type MergeChunk struct {
	SrcOff    int
	SrcD      []int
	Axes      []int
	RowAxes   int
	DstOff    int
	DstStride int
	RowOff    int
	ColOff    int
}

// UnmergeChunk cuts one output block back out of a merged sector
// matrix: the (RowD x ColD) rectangle at (RowOff, ColOff) becomes the
// contiguous block at DstOff.
type UnmergeChunk struct {
	SrcOff    int
	SrcStride int
	RowOff    int
	ColOff    int
	RowD      int
	ColD      int
	DstOff    int
}

// TransposeChunk permutes one block's legs: the source block at SrcOff
// with dims D is written to DstOff with axis order Axes (destination
// axis k holds source axis Axes[k]).
type TransposeChunk struct {
	SrcOff int
	DstOff int
	D      []int
	Axes   []int
}

// SliceMeta copies one contiguous element range during buffer
// compaction.
type SliceMeta struct {
	DstOff int
	SrcOff int
	Size   int
}

// Backend executes dense numeric work on flat buffers, given block
// metadata computed by the engine. Implementations must preserve the
// element type of their inputs. Every method that returns a buffer
// allocates a fresh one of the declared total size; Scale and Negate
// are the two documented in-place exceptions, serving scalar rescaling
// and swap-gate sign flips.
type Backend interface {
	Name() string

	// Alloc returns a zeroed buffer for n elements.
	Alloc(n int, dtype DataType) *RawBuffer

	// Dot executes the batched per-sector matrix product.
	Dot(a, b *RawBuffer, meta []DotMeta, size int) *RawBuffer

	// DotWithMask is Dot with per-sector boolean selections compressing
	// the contracted dimension of both operands before each multiply.
	DotWithMask(a, b *RawBuffer, meta []DotMeta, masks []DotMask, size int) *RawBuffer

	// DotDiag multiplies diagonal values elementwise into one axis of
	// each listed target block.
	DotDiag(t, diag *RawBuffer, meta []DiagMeta, size int) *RawBuffer

	// MaskDiag keeps only the target entries whose diagonal value is
	// nonzero, truncating the masked axis to NewDim.
	MaskDiag(t, diag *RawBuffer, meta []DiagMeta, size int) *RawBuffer

	// Trace sums the listed traced-index pairs of each contribution.
	Trace(t *RawBuffer, meta []TraceMeta, size int) *RawBuffer

	// TraceWithMask is Trace for contributions whose traced pairs were
	// filtered by fusion-history masks.
	TraceWithMask(t *RawBuffer, meta []TraceMeta, size int) *RawBuffer

	// SumElements reduces the whole buffer to a one-element buffer.
	SumElements(t *RawBuffer) *RawBuffer

	// CountNonzero counts nonzero elements in [lo, hi).
	CountNonzero(t *RawBuffer, lo, hi int) int

	// Vdot returns sum_i a_i*b_i. Conjugation is applied by the engine
	// beforehand.
	Vdot(a, b *RawBuffer) complex128

	// ApplySlice compacts element ranges into a fresh buffer.
	ApplySlice(t *RawBuffer, meta []SliceMeta, size int) *RawBuffer

	// Compress keeps the elements selected by mask, in order.
	Compress(t *RawBuffer, mask []bool) *RawBuffer

	// TransposeAndMerge lays blocks out as two-sided sector matrices.
	TransposeAndMerge(t *RawBuffer, meta []MergeChunk, size int) *RawBuffer

	// Unmerge restores the multi-leg block layout after a product.
	Unmerge(t *RawBuffer, meta []UnmergeChunk, size int) *RawBuffer

	// Transpose permutes the legs of each listed block.
	Transpose(t *RawBuffer, meta []TransposeChunk, size int) *RawBuffer

	// Conj returns the complex conjugate (a copy for real buffers).
	Conj(t *RawBuffer) *RawBuffer

	// Scale multiplies the buffer by alpha in place.
	Scale(t *RawBuffer, alpha complex128)

	// Negate flips the sign of the listed element ranges in place.
	Negate(t *RawBuffer, slices [][2]int)
}
