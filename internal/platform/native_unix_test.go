//go:build unix

package platform

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var en *Errno
	require.True(t, errors.As(err, &en), "expected *Errno, got %T", err)
	assert.Equal(t, code, en.Code, "error: %v", err)
}

func leftoverTmp(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.fileops-tmp"))
	require.NoError(t, err)
	return matches
}

type progressCall struct {
	reason      CallbackReason
	total       int64
	transferred int64
}

func recorder(calls *[]progressCall, answer Disposition) ProgressRoutine {
	return func(total, transferred, _, _ int64, _ uint32, reason CallbackReason, _, _ uintptr) Disposition {
		*calls = append(*calls, progressCall{reason: reason, total: total, transferred: transferred})
		return answer
	}
}

func TestInvokeCopyFileEx(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "payload")
	require.NoError(t, os.Chmod(src, 0o640))
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	n := NewNative()
	require.NoError(t, n.Invoke(Call{Primitive: CopyFileEx, Src: src, Dst: dst}))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o640), info.Mode().Perm())
	assert.True(t, mtime.Equal(info.ModTime()))
	assert.Empty(t, leftoverTmp(t, dir))
}

func TestInvokeCopyFileExOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	writeFile(t, src, "new")
	writeFile(t, dst, "old contents")

	require.NoError(t, NewNative().Invoke(Call{Primitive: CopyFileEx, Src: src, Dst: dst}))
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestInvokeCopyFileExFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, dir string) (src, dst string)
		flags uint32
		code  ErrorCode
	}{
		{
			name: "missing source",
			setup: func(_ *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nope"), filepath.Join(dir, "dst")
			},
			code: ErrorFileNotFound,
		},
		{
			name: "missing source directory",
			setup: func(_ *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nodir", "src"), filepath.Join(dir, "dst")
			},
			code: ErrorPathNotFound,
		},
		{
			name: "missing destination directory",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "src")
				writeFile(t, src, "x")
				return src, filepath.Join(dir, "nodir", "dst")
			},
			code: ErrorPathNotFound,
		},
		{
			name: "fail if exists",
			setup: func(t *testing.T, dir string) (string, string) {
				src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
				writeFile(t, src, "x")
				writeFile(t, dst, "y")
				return src, dst
			},
			flags: CopyFlagFailIfExists,
			code:  ErrorFileExists,
		},
		{
			name: "read-only destination",
			setup: func(t *testing.T, dir string) (string, string) {
				src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
				writeFile(t, src, "x")
				writeFile(t, dst, "y")
				require.NoError(t, os.Chmod(dst, 0o444))
				return src, dst
			},
			code: ErrorAccessDenied,
		},
		{
			name: "directory destination",
			setup: func(t *testing.T, dir string) (string, string) {
				src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
				writeFile(t, src, "x")
				require.NoError(t, os.Mkdir(dst, 0o755))
				return src, dst
			},
			code: ErrorAccessDenied,
		},
		{
			name: "directory source",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "srcdir")
				require.NoError(t, os.Mkdir(src, 0o755))
				return src, filepath.Join(dir, "dst")
			},
			code: ErrorAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src, dst := tt.setup(t, dir)
			err := NewNative().Invoke(Call{Primitive: CopyFileEx, Src: src, Dst: dst, Flags: tt.flags})
			requireCode(t, err, tt.code)
			assert.Empty(t, leftoverTmp(t, dir))
		})
	}
}

func TestCopyFileExFailIfExistsLeavesDestination(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeFile(t, src, "source")
	writeFile(t, dst, "keep me")

	err := NewNative().Invoke(Call{Primitive: CopyFileEx, Src: src, Dst: dst, Flags: CopyFlagFailIfExists})
	require.ErrorIs(t, err, fs.ErrExist)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(got))
}

func TestCopyFileExProgressSequence(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	size := 2*chunkSize + 10
	require.NoError(t, os.WriteFile(src, make([]byte, size), 0o644))

	var calls []progressCall
	err := NewNative().Invoke(Call{
		Primitive: CopyFileEx, Src: src, Dst: dst,
		Progress: recorder(&calls, Continue),
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(calls), 2)
	assert.Equal(t, StreamSwitch, calls[0].reason)
	assert.Zero(t, calls[0].transferred)
	last := calls[len(calls)-1]
	assert.Equal(t, ChunkFinished, last.reason)
	assert.Equal(t, int64(size), last.transferred)
	for _, c := range calls {
		assert.Equal(t, int64(size), c.total)
	}
}

func TestCopyFileExProgressEmptyFile(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeFile(t, src, "")

	var calls []progressCall
	require.NoError(t, NewNative().Invoke(Call{
		Primitive: CopyFileEx, Src: src, Dst: dst,
		Progress: recorder(&calls, Continue),
	}))
	require.Len(t, calls, 2)
	assert.Equal(t, StreamSwitch, calls[0].reason)
	assert.Equal(t, ChunkFinished, calls[1].reason)
}

func TestCopyFileExProgressAbort(t *testing.T) {
	for _, d := range []Disposition{Cancel, Stop} {
		t.Run(d.String(), func(t *testing.T) {
			dir := t.TempDir()
			src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
			require.NoError(t, os.WriteFile(src, make([]byte, 3*chunkSize), 0o644))

			var calls []progressCall
			err := NewNative().Invoke(Call{
				Primitive: CopyFileEx, Src: src, Dst: dst,
				Progress: recorder(&calls, d),
			})
			requireCode(t, err, ErrorRequestAborted)
			assert.Len(t, calls, 1)
			assert.NoFileExists(t, dst)
			assert.Empty(t, leftoverTmp(t, dir))
			assert.Empty(t, PendingTmpFiles())
		})
	}
}

func TestCopyFileExProgressQuiet(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, make([]byte, 3*chunkSize), 0o644))

	var calls []progressCall
	require.NoError(t, NewNative().Invoke(Call{
		Primitive: CopyFileEx, Src: src, Dst: dst,
		Progress: recorder(&calls, Quiet),
	}))
	assert.Len(t, calls, 1)
	assert.FileExists(t, dst)
}

func TestCopyFileExSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	link := filepath.Join(dir, "link")
	writeFile(t, target, "through the link")
	require.NoError(t, os.Symlink("target", link))

	n := NewNative()

	followed := filepath.Join(dir, "followed")
	require.NoError(t, n.Invoke(Call{Primitive: CopyFileEx, Src: link, Dst: followed}))
	info, err := os.Lstat(followed)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())

	copied := filepath.Join(dir, "copied")
	require.NoError(t, n.Invoke(Call{Primitive: CopyFileEx, Src: link, Dst: copied, Flags: CopyFlagSymlink}))
	dest, err := os.Readlink(copied)
	require.NoError(t, err)
	assert.Equal(t, "target", dest)
}

func TestInvokeMoveFileWithProgress(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeFile(t, src, "moving")

	require.NoError(t, NewNative().Invoke(Call{Primitive: MoveFileWithProgress, Src: src, Dst: dst}))
	assert.NoFileExists(t, src)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "moving", string(got))
}

func TestInvokeMoveDirectory(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "srcdir"), filepath.Join(dir, "dstdir")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	writeFile(t, filepath.Join(src, "nested", "f"), "x")

	require.NoError(t, NewNative().Invoke(Call{Primitive: MoveFileWithProgress, Src: src, Dst: dst}))
	assert.NoDirExists(t, src)
	assert.FileExists(t, filepath.Join(dst, "nested", "f"))
}

func TestInvokeMoveFailures(t *testing.T) {
	tests := []struct {
		name    string
		flags   uint32
		dstMode fs.FileMode
		code    ErrorCode
	}{
		{name: "existing without replace", dstMode: 0o644, code: ErrorAlreadyExists},
		{name: "read-only with replace", flags: MoveFlagReplaceExisting, dstMode: 0o444, code: ErrorAccessDenied},
		{name: "delay until reboot", flags: MoveFlagDelayUntilReboot, code: ErrorNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
			writeFile(t, src, "source")
			if tt.dstMode != 0 {
				writeFile(t, dst, "dest")
				require.NoError(t, os.Chmod(dst, tt.dstMode))
			}

			err := NewNative().Invoke(Call{Primitive: MoveFileWithProgress, Src: src, Dst: dst, Flags: tt.flags})
			requireCode(t, err, tt.code)
			assert.FileExists(t, src)
		})
	}
}

func TestInvokeMoveReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")
	writeFile(t, src, "fresh")
	writeFile(t, dst, "stale")

	err := NewNative().Invoke(Call{
		Primitive: MoveFileWithProgress, Src: src, Dst: dst,
		Flags: MoveFlagReplaceExisting | MoveFlagWriteThrough,
	})
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(got))
}

func TestInvokeTransactedUnsupported(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, src, "x")

	for _, p := range []Primitive{CopyFileTransacted, MoveFileTransacted} {
		err := NewNative().Invoke(Call{Primitive: p, Src: src, Dst: filepath.Join(dir, "dst"), Transaction: 1})
		requireCode(t, err, ErrorNotSupported)
	}
}

func TestAttributes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, "x")
	n := NewNative()

	attrs, err := n.Attributes(0, path)
	require.NoError(t, err)
	assert.Equal(t, AttrNormal, attrs)

	require.NoError(t, n.SetAttributes(0, path, AttrReadOnly))
	attrs, err = n.Attributes(0, path)
	require.NoError(t, err)
	assert.True(t, attrs.Has(AttrReadOnly))
	assert.True(t, attrs.Protected())

	require.NoError(t, n.SetAttributes(0, path, AttrNormal))
	attrs, err = n.Attributes(0, path)
	require.NoError(t, err)
	assert.False(t, attrs.Protected())

	attrs, err = n.Attributes(0, dir)
	require.NoError(t, err)
	assert.True(t, attrs.IsDir())

	_, err = n.Attributes(0, filepath.Join(dir, "missing"))
	requireCode(t, err, ErrorFileNotFound)
}

func TestFileTimesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, "x")
	n := NewNative()

	want := FileTimes{
		LastAccess: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		LastWrite:  time.Date(2019, 6, 7, 8, 9, 10, 0, time.UTC),
	}
	require.NoError(t, n.SetFileTimes(0, path, want))

	got, err := n.FileTimes(0, path)
	require.NoError(t, err)
	assert.True(t, want.LastWrite.Equal(got.LastWrite), "last write %v", got.LastWrite)
	assert.True(t, want.LastAccess.Equal(got.LastAccess), "last access %v", got.LastAccess)
}

func TestSizeAndOpenRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	writeFile(t, path, "twelve bytes")
	n := NewNative()

	size, err := n.Size(0, path)
	require.NoError(t, err)
	assert.Equal(t, int64(12), size)

	c, err := n.OpenRead(0, path)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = n.OpenRead(0, filepath.Join(dir, "missing"))
	requireCode(t, err, ErrorFileNotFound)
}

func TestLinks(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing")
	writeFile(t, existing, "shared")

	hard := filepath.Join(dir, "hard")
	require.NoError(t, CreateHardLink(0, hard, existing))
	got, err := os.ReadFile(hard)
	require.NoError(t, err)
	assert.Equal(t, "shared", string(got))

	err = CreateHardLink(0, filepath.Join(dir, "h2"), filepath.Join(dir, "missing"))
	requireCode(t, err, ErrorFileNotFound)

	err = CreateHardLink(7, filepath.Join(dir, "h3"), existing)
	requireCode(t, err, ErrorNotSupported)

	sym := filepath.Join(dir, "sym")
	require.NoError(t, CreateSymbolicLink(sym, existing, false))
	target, err := os.Readlink(sym)
	require.NoError(t, err)
	assert.Equal(t, existing, target)
}

func TestKernelTransactionUnsupported(t *testing.T) {
	tx, err := NewKernelTransaction("test", 0)
	require.Nil(t, tx)
	requireCode(t, err, ErrorNotSupported)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDetect(t *testing.T) {
	caps := Detect()
	assert.False(t, caps.Transactions)
	assert.NotEmpty(t, caps.OSVersion)
	assert.Equal(t, caps, Detect())
}

func TestCleanupTmpFilesRemovesInFlightCopies(t *testing.T) {
	dir := t.TempDir()
	tmp := tmpName(filepath.Join(dir, "dst"))
	require.NoError(t, os.WriteFile(tmp, []byte("partial"), 0o600))
	registerTmp(tmp)
	assert.Contains(t, PendingTmpFiles(), tmp)

	CleanupTmpFiles()
	assert.NoFileExists(t, tmp)
	assert.NotContains(t, PendingTmpFiles(), tmp)
}
