package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile(t *testing.T) {
	for _, algo := range []Algorithm{VerifyBLAKE3, VerifyXXHash} {
		t.Run(algo.String(), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "test.txt")
			require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

			h1, err := HashFile(path, algo)
			require.NoError(t, err)
			assert.NotEmpty(t, h1)

			path2 := filepath.Join(dir, "test2.txt")
			require.NoError(t, os.WriteFile(path2, []byte("hello world"), 0o644))
			h2, err := HashFile(path2, algo)
			require.NoError(t, err)
			assert.Equal(t, h1, h2)

			path3 := filepath.Join(dir, "test3.txt")
			require.NoError(t, os.WriteFile(path3, []byte("different content"), 0o644))
			h3, err := HashFile(path3, algo)
			require.NoError(t, err)
			assert.NotEqual(t, h1, h3)
		})
	}
}

func TestHashFileDigestLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	b3, err := HashFile(path, VerifyBLAKE3)
	require.NoError(t, err)
	assert.Len(t, b3, 64)

	xx, err := HashFile(path, VerifyXXHash)
	require.NoError(t, err)
	assert.Len(t, xx, 16)
}

func TestHashFileErrors(t *testing.T) {
	_, err := HashFile("/nonexistent/file", VerifyBLAKE3)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err = HashFile(path, VerifyNone)
	assert.Error(t, err)
}

func TestParseAlgorithm(t *testing.T) {
	tests := map[string]Algorithm{
		"":       VerifyBLAKE3,
		"blake3": VerifyBLAKE3,
		"XXHASH": VerifyXXHash,
		"none":   VerifyNone,
	}
	for in, want := range tests {
		got, err := ParseAlgorithm(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseAlgorithm("md5")
	assert.Error(t, err)
}
