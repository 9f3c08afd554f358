package pyfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.py")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDetectEncoding(t *testing.T) {
	assert.Equal(t, "utf-8", DetectEncoding([]byte("import os\n")))
	assert.Equal(t, "utf-8-sig", DetectEncoding([]byte("\xef\xbb\xbfimport os\n")))
	assert.Equal(t, "latin-1", DetectEncoding([]byte("# -*- coding: latin-1 -*-\nimport os\n")))
	assert.Equal(t, "iso-8859-1", DetectEncoding([]byte("#!/usr/bin/env python\n# coding=iso-8859-1\n")))
	// Third line is too late for a cookie.
	assert.Equal(t, "utf-8", DetectEncoding([]byte("a = 1\nb = 2\n# coding: latin-1\n")))
}

func TestReadWriteRoundTripUTF8(t *testing.T) {
	path := writeTemp(t, []byte("x = 'caf\xc3\xa9'\n"))
	f, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "x = 'café'\n", f.Content)

	require.NoError(t, f.Write("y = 1\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "y = 1\n", string(data))
}

func TestReadWriteRoundTripBOM(t *testing.T) {
	path := writeTemp(t, []byte("\xef\xbb\xbfimport os\n"))
	f, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "utf-8-sig", f.Encoding)
	assert.Equal(t, "import os\n", f.Content)

	require.NoError(t, f.Write("pass\n"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xef\xbb\xbfpass\n", string(data))
}

func TestReadWriteRoundTripLatin1(t *testing.T) {
	// 0xE9 is é in latin-1 and invalid UTF-8.
	raw := []byte("# -*- coding: latin-1 -*-\ns = '\xe9'\n")
	path := writeTemp(t, raw)
	f, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "latin-1", f.Encoding)
	assert.Contains(t, f.Content, "é")

	require.NoError(t, f.Write(f.Content))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestUnknownCookieFallsBackToLatin1(t *testing.T) {
	raw := []byte("# -*- coding: blah -*-\nx = '\xff'\n")
	path := writeTemp(t, raw)
	f, err := Read(path)
	require.NoError(t, err)

	require.NoError(t, f.Write(f.Content))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.py"))
	assert.Error(t, err)
}
