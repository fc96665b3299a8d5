//go:build windows && (amd64 || arm64)

package platform

// progressThunk receives the CopyProgressRoutine arguments. On 64-bit
// targets each LARGE_INTEGER occupies one argument slot.
func progressThunk(
	total, transferred, streamSize, streamTransferred uintptr,
	stream, reason uintptr,
	src, dst, data uintptr,
) uintptr {
	return dispatchProgress(
		int64(total), int64(transferred), int64(streamSize), int64(streamTransferred),
		uint32(stream), uint32(reason), src, dst, data)
}
