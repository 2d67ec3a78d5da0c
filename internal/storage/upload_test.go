package storage

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowedFile(t *testing.T) {
	cases := map[string]bool{
		"a.JPG":          true,
		"a.jpeg":         true,
		"photo.png":      true,
		"doc.tar.gif":    true,
		"notes.txt":      true,
		"scan.PDF":       true,
		"a":              false,
		"a.exe":          false,
		"png":            false,
		"archive.png.sh": false,
		"trailing.":      false,
		".gif":           true,
	}
	for name, want := range cases {
		assert.Equalf(t, want, AllowedFile(name), "AllowedFile(%q)", name)
	}
}

func TestSecureFilename(t *testing.T) {
	cases := map[string]string{
		"My cool movie.mov":     "My_cool_movie.mov",
		"../../../etc/passwd":   "etc_passwd",
		`C:\Windows\evil.png`:   "C_Windows_evil.png",
		"i contain cool ümläut": "i_contain_cool_mlut",
		"../../":                "",
		".hidden.jpg":           "hidden.jpg",
		"bike$(rm).png":         "bikerm.png",
	}
	for in, want := range cases {
		assert.Equalf(t, want, SecureFilename(in), "SecureFilename(%q)", in)
	}
}

func TestStore_SaveOverwritesAndServes(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewStore(fs, "uploads")
	require.NoError(t, err)

	require.NoError(t, store.Save("bike.png", strings.NewReader("first")))
	require.NoError(t, store.Save("bike.png", strings.NewReader("second")))
	assert.True(t, store.Exists("bike.png"))

	data, err := afero.ReadFile(fs, "uploads/bike.png")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	srv := httptest.NewServer(http.FileServer(store.FileSystem()))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/bike.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "second", string(body))
}

func TestStore_SaveRejectsUnsanitizedNames(t *testing.T) {
	store, err := NewStore(afero.NewMemMapFs(), "uploads")
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.png", "a b.png"} {
		assert.ErrorIsf(t, store.Save(name, strings.NewReader("x")), ErrInvalidFilename, "Save(%q)", name)
	}
	assert.False(t, store.Exists("escape.png"))
}
