package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/r3d91ll/relaxplot/pkg/chart"
)

func TestManifest_FromExport(t *testing.T) {
	e := New(quietOptions())
	if _, err := e.Manifest(); err == nil {
		t.Fatal("expected manifest to require a written export")
	}

	req := fitRequest(chart.BackendGeneral)
	req.Bars = []chart.BarGroup{barGroup("A", "B")}
	if err := e.Configure(req); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Layout(); err != nil {
		t.Fatal(err)
	}
	script, err := e.Render()
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	if err := e.Write(&WriterSink{W: &out, Name: "stdout"}); err != nil {
		t.Fatal(err)
	}

	m, err := e.Manifest()
	if err != nil {
		t.Fatal(err)
	}
	if m.ScriptHash != script.Hash() || m.Algorithm != HashAlgorithm {
		t.Errorf("unexpected hash fields %s %s", m.ScriptHash, m.Algorithm)
	}
	if m.Destination != "stdout" || m.RequestID != e.ID() {
		t.Errorf("unexpected identity fields %+v", m)
	}
	if m.Subplots != 2 || m.Lines != len(script.Lines) || m.BarGroups != 1 {
		t.Errorf("unexpected counts %+v", m)
	}
	if len(m.Palette) != 1 || m.Palette[0] != "#ff0000" {
		t.Errorf("unexpected palette %v", m.Palette)
	}
	if m.GeneratedAt.IsZero() {
		t.Error("expected a generation time")
	}
	if !m.Verify([]byte(out.String())) || m.Verify([]byte("tampered")) {
		t.Error("Verify does not track the script content")
	}
}

func TestManifest_WriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.py"+ManifestSuffix)
	m := &Manifest{RequestID: "abc", Backend: "general", ScriptHash: HashBytes([]byte("x")), Algorithm: HashAlgorithm}
	if err := m.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.RequestID != "abc" || !got.Verify([]byte("x")) {
		t.Errorf("unexpected manifest %+v", got)
	}
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}

func TestShortHash(t *testing.T) {
	if ShortHash("0123456789abcdef") != "01234567" {
		t.Error("expected the first 8 characters")
	}
	if ShortHash("abc") != "abc" {
		t.Error("short input should be returned unchanged")
	}
	if ManifestPath("graph.r") != "graph.r.manifest.json" {
		t.Errorf("unexpected manifest path %s", ManifestPath("graph.r"))
	}
}
