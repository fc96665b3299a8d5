//go:build windows && 386

package platform

// progressThunk receives the CopyProgressRoutine arguments. On 386 each
// LARGE_INTEGER is pushed as two 32-bit halves, low word first.
func progressThunk(
	totalLo, totalHi uintptr,
	transferredLo, transferredHi uintptr,
	streamSizeLo, streamSizeHi uintptr,
	streamTransferredLo, streamTransferredHi uintptr,
	stream, reason uintptr,
	src, dst, data uintptr,
) uintptr {
	return dispatchProgress(
		joinLarge(totalLo, totalHi),
		joinLarge(transferredLo, transferredHi),
		joinLarge(streamSizeLo, streamSizeHi),
		joinLarge(streamTransferredLo, streamTransferredHi),
		uint32(stream), uint32(reason), src, dst, data)
}

func joinLarge(lo, hi uintptr) int64 {
	return int64(uint64(hi)<<32 | uint64(uint32(lo)))
}
