package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
)

func TestManifestValidate(t *testing.T) {
	doc := minicModule{Package: "geo", Version: "v1.2"}
	be.Err(t, doc.validate(), nil)
	be.Equal(t, doc.Version, "1.2.0")

	doc = minicModule{Package: "geo"}
	be.Err(t, doc.validate(), nil)
	be.Equal(t, doc.Version, "")

	doc = minicModule{Version: "1.0.0"}
	be.True(t, doc.validate() != nil)

	doc = minicModule{Package: "geo", Version: "one"}
	be.True(t, doc.validate() != nil)
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, writeManifest(dir, minicModule{
		Package: "geo",
		Version: "0.3.0",
		Library: true,
		Imports: []string{"math.msig"},
	}), nil)

	doc, err := readManifest(dir)
	be.Err(t, err, nil)
	be.Equal(t, doc.Package, "geo")
	be.Equal(t, doc.Version, "0.3.0")
	be.True(t, doc.Library)
	be.Equal(t, doc.Imports, []string{"math.msig"})
}

func TestReadManifestErrors(t *testing.T) {
	_, err := readManifest(t.TempDir())
	be.True(t, err != nil)

	dir := t.TempDir()
	be.Err(t, os.WriteFile(filepath.Join(dir, manifestName), []byte("Version: 1.0.0\n"), 0o644), nil)
	_, err = readManifest(dir)
	be.True(t, err != nil)
}
