//go:build unix && !linux

package platform

// CopyFile transfers data with pread/pwrite on Unix platforms other than Linux.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	if err := preallocate(params.DstFd, params.SrcSize); err != nil {
		return CopyResult{}, err
	}
	return copyReadWrite(params)
}
