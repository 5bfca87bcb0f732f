package export

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

func TestExport_StateMachine(t *testing.T) {
	e := New(quietOptions())
	if e.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", e.State())
	}
	if e.ID() == "" {
		t.Error("expected a request id")
	}

	steps := []struct {
		name string
		run  func() error
		want State
	}{
		{"configure", func() error { return e.Configure(fitRequest(chart.BackendGeneral)) }, StateConfigured},
		{"layout", func() error { _, err := e.Layout(); return err }, StateLaidOut},
		{"render", func() error { _, err := e.Render(); return err }, StateRendered},
		{"write", func() error { return e.Write(&WriterSink{W: &strings.Builder{}}) }, StateWritten},
		{"close", e.Close, StateClosed},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("%s: unexpected error: %v", s.name, err)
		}
		if e.State() != s.want {
			t.Fatalf("%s: expected state %s, got %s", s.name, s.want, e.State())
		}
	}
}

func TestExport_OutOfOrder(t *testing.T) {
	tests := []struct {
		name string
		run  func(e *Export) error
	}{
		{"render first", func(e *Export) error { _, err := e.Render(); return err }},
		{"layout first", func(e *Export) error { _, err := e.Layout(); return err }},
		{"write first", func(e *Export) error { return e.Write(&WriterSink{W: &strings.Builder{}}) }},
		{"close first", func(e *Export) error { return e.Close() }},
		{"configure twice", func(e *Export) error {
			if err := e.Configure(fitRequest(chart.BackendStat)); err != nil {
				return err
			}
			return e.Configure(fitRequest(chart.BackendStat))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(quietOptions())
			err := tt.run(e)
			if !errors.Is(err, werrors.ErrInvalidState) {
				t.Fatalf("expected EXPORT_INVALID_STATE, got %v", err)
			}
			if e.State() != StateFailed {
				t.Errorf("expected failed state, got %s", e.State())
			}
			if e.Err() == nil {
				t.Error("expected the failure to be recorded")
			}
		})
	}
}

func TestExport_FailedIsTerminal(t *testing.T) {
	e := New(quietOptions())
	req := fitRequest(chart.BackendGeneral)
	req.Config.Ranges = [4]float64{10, 0, 0, 5}

	if err := e.Configure(req); err == nil {
		t.Fatal("expected invalid ranges to fail")
	}
	if err := e.Configure(fitRequest(chart.BackendGeneral)); !errors.Is(err, werrors.ErrInvalidState) {
		t.Errorf("expected a failed export to refuse further steps, got %v", err)
	}
	if err := e.Close(); err != nil {
		t.Errorf("closing a failed export should be a no-op, got %v", err)
	}
}

func TestExport_ConfigureErrors(t *testing.T) {
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.yaml")
	if err := os.WriteFile(partial, []byte("general:\n  quote: strconv\n  roles:\n    import: 'import x'\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		mutate   func(*Request, *Options)
		expected string
	}{
		{"no backend", func(r *Request, _ *Options) { r.Config.Backend = chart.BackendUnknown }, werrors.ErrConfigUnknownBackend},
		{"empty ranges", func(r *Request, _ *Options) { r.Config.Ranges = [4]float64{} }, werrors.ErrValidationInvalidValue},
		{"no data", func(r *Request, _ *Options) { r.Residues = nil }, werrors.ErrExportNoData},
		{"missing role", func(_ *Request, o *Options) { o.TemplateFile = partial }, werrors.ErrTemplateMissingRole},
		{"missing file", func(_ *Request, o *Options) { o.TemplateFile = filepath.Join(dir, "none.yaml") }, werrors.ErrTemplateLoadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fitRequest(chart.BackendGeneral)
			opts := quietOptions()
			tt.mutate(&req, &opts)

			err := New(opts).Configure(req)
			if !werrors.IsCode(err, tt.expected) {
				t.Errorf("expected %s, got %v", tt.expected, err)
			}
		})
	}
}

func TestExport_LayoutOverflow(t *testing.T) {
	req := fitRequest(chart.BackendGeneral)
	req.Residues = nil
	for i := 1; i <= 82; i++ {
		req.Residues = append(req.Residues, chart.ResidueRecord{
			Name: "R2", Residue: strconv.Itoa(i), Raw: [][]float64{{0, 1, 0.1}},
		})
	}

	e := New(quietOptions())
	if err := e.Configure(req); err != nil {
		t.Fatal(err)
	}
	_, err := e.Layout()
	if !errors.Is(err, werrors.ErrLayoutOverflow) {
		t.Fatalf("expected LAYOUT_OVERFLOW, got %v", err)
	}
	if e.State() != StateFailed {
		t.Errorf("expected failed state, got %s", e.State())
	}
}

func TestExport_ShapeErrorDropsGroup(t *testing.T) {
	req := fitRequest(chart.BackendGeneral)
	req.Residues = append(req.Residues, chart.ResidueRecord{
		Name: "R2", Residue: "2", Raw: [][]float64{{0, 1, 0.1}, {1, 2}},
	})

	e := New(quietOptions())
	if err := e.Configure(req); err != nil {
		t.Fatal(err)
	}
	plan, err := e.Layout()
	if err != nil {
		t.Fatalf("group errors must not fail layout: %v", err)
	}
	if len(plan.Residues) != 1 || plan.Grid.Cols != 1 || plan.Grid.Rows != 1 {
		t.Errorf("expected one surviving panel in a 1x1 grid, got %d panels %+v", len(plan.Residues), plan.Grid)
	}

	skipped := e.Skipped()
	if len(skipped) != 1 || !errors.Is(skipped[0], werrors.ErrDataShape) {
		t.Fatalf("expected one DATA_SHAPE error, got %v", skipped)
	}
	pe, _ := werrors.AsPlotError(skipped[0])
	if pe.Context["group_id"] != "2" || pe.Context["group"] != "res2" {
		t.Errorf("error does not name the group: %v", pe.Context)
	}

	script, err := e.Render()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(script.Text(), "res2_") {
		t.Error("dropped group rendered")
	}
	if len(script.Skipped) != 1 {
		t.Errorf("expected the script to carry 1 skipped group, got %d", len(script.Skipped))
	}
}

func TestExport_MalformedKey(t *testing.T) {
	_, keyErr := chart.ParseBarKey("Rates|B|R1")
	if keyErr == nil {
		t.Fatal("expected a malformed key")
	}
	req := fitRequest(chart.BackendGeneral)
	req.Bars = []chart.BarGroup{barGroup("A")}
	req.Rejected = []error{keyErr}

	t.Run("refused by default", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.py")
		_, err := Run(req, NewFileSink(path), quietOptions())
		if !werrors.IsCode(err, werrors.ErrExportSkippedGroups) {
			t.Fatalf("expected EXPORT_SKIPPED_GROUPS, got %v", err)
		}
		if !errors.Is(err, werrors.ErrMalformedKey) {
			t.Errorf("expected the malformed key in the cause chain, got %v", err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Error("no file may be written when groups were dropped")
		}
	})

	t.Run("written with skip invalid", func(t *testing.T) {
		opts := quietOptions()
		opts.SkipInvalid = true
		var out strings.Builder
		res, err := Run(req, &WriterSink{W: &out, Name: "buffer"}, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out.String(), "R1") {
			t.Error("malformed group rendered")
		}
		if !strings.Contains(out.String(), "R2_A_raw_X") {
			t.Error("valid bar group missing")
		}
		if len(res.Script.Skipped) != 1 || len(res.Manifest.Skipped) != 1 {
			t.Errorf("expected one skipped group reported, got %v", res.Script.Skipped)
		}
	})
}

func TestExport_EmptyBarGroup(t *testing.T) {
	req := fitRequest(chart.BackendStat)
	req.Bars = []chart.BarGroup{{}, barGroup("A")}

	e := New(quietOptions())
	if err := e.Configure(req); err != nil {
		t.Fatal(err)
	}
	plan, err := e.Layout()
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Bars) != 1 || plan.BarGrid.Rows != 1 {
		t.Errorf("expected one bar panel, got %d (%+v)", len(plan.Bars), plan.BarGrid)
	}
	if s := e.Skipped(); len(s) != 1 || !errors.Is(s[0], werrors.ErrDataShape) {
		t.Errorf("expected an empty bar group to be skipped, got %v", s)
	}
}

func TestRun_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	req := fitRequest(chart.BackendStat)
	req.Config.File = filepath.Join(dir, "out.r")
	opts := quietOptions()
	opts.Manifest = true

	res, err := Run(req, nil, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(req.Config.File)
	if err != nil {
		t.Fatalf("script not written: %v", err)
	}
	if string(data) != res.Script.Text() {
		t.Error("written file differs from the rendered script")
	}

	m, err := ReadManifest(ManifestPath(req.Config.File))
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if !m.Verify(data) {
		t.Error("manifest hash does not match the script")
	}
	if m.RequestID != res.ID || m.Backend != "stat" || m.Residues != 1 {
		t.Errorf("unexpected manifest %+v", m)
	}
}
