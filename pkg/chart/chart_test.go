package chart

import (
	"errors"
	"reflect"
	"testing"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// -----------------------------------------------------------------------------
// Backend Tests
// -----------------------------------------------------------------------------

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in       string
		expected Backend
	}{
		{"macro", BackendMacro},
		{"grace", BackendMacro},
		{"stat", BackendStat},
		{"R", BackendStat},
		{"general", BackendGeneral},
		{" Python ", BackendGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	if _, err := ParseBackend("gnuplot"); !werrors.IsCode(err, werrors.ErrConfigUnknownBackend) {
		t.Errorf("expected CONFIG_UNKNOWN_BACKEND, got %v", err)
	}
}

func TestBackendText(t *testing.T) {
	var b Backend
	if err := b.UnmarshalText([]byte("python")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text, _ := b.MarshalText()
	if string(text) != "general" {
		t.Errorf("expected general, got %q", text)
	}
	if BackendStat.DefaultFile() != "graph.r" || BackendMacro.DefaultFile() != "ASCII.agr" {
		t.Error("unexpected default file names")
	}
}

// -----------------------------------------------------------------------------
// Colour Tests
// -----------------------------------------------------------------------------

func TestScatterColor_NeverReserved(t *testing.T) {
	for size := 0; size <= 10; size++ {
		for i := 0; i < 20; i++ {
			c := ScatterColor(i, size)
			if c.Index == ColorBackground || c.Index == ColorForeground {
				t.Fatalf("ScatterColor(%d, %d) = %d, a reserved index", i, size, c.Index)
			}
		}
	}
}

func TestScatterColor_Saturates(t *testing.T) {
	got := []int{ScatterColor(0, 3).Index, ScatterColor(1, 3).Index, ScatterColor(2, 3).Index, ScatterColor(5, 3).Index}
	want := []int{2, 3, 4, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBarColors_Wrap(t *testing.T) {
	colors := BarColors(BackendStat, 4)
	if colors[3] != colors[0] {
		t.Errorf("expected 4th colour to equal the 1st, got %v and %v", colors[3], colors[0])
	}
	if colors[0].Name != "green" {
		t.Errorf("expected green, got %q", colors[0].Name)
	}
	if BarColors(BackendGeneral, 1)[0].Name != "g" {
		t.Error("expected single-letter colours for general")
	}
}

func TestRGB(t *testing.T) {
	c, err := RGBFromInts([]int{255, 0, 16})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Hex() != "ff0010" {
		t.Errorf("expected ff0010, got %q", c.Hex())
	}
	if _, err := RGBFromInts([]int{256, 0, 0}); err == nil {
		t.Error("expected error for channel above 255")
	}
	if _, err := RGBFromInts([]int{1, 2}); err == nil {
		t.Error("expected error for two channels")
	}
	if Palette(nil).Index(0) != 2 {
		t.Error("expected palette entry 0 to be index 2")
	}
}

// -----------------------------------------------------------------------------
// Composite Key Tests
// -----------------------------------------------------------------------------

func TestParseResidueTitle(t *testing.T) {
	name, res, err := ParseResidueTitle("CPMG 600:12:extra")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "CPMG 600" || res != "12" {
		t.Errorf("unexpected fields %q %q", name, res)
	}

	for _, bad := range []string{"no residue", "name:", ""} {
		if _, _, err := ParseResidueTitle(bad); !errors.Is(err, werrors.ErrMalformedKey) {
			t.Errorf("ParseResidueTitle(%q): expected malformed key, got %v", bad, err)
		}
	}
}

func TestParseBarKey(t *testing.T) {
	k, err := ParseBarKey("Kex|CPMG|_|R2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != (BarKey{Title: "Kex", Fit: "CPMG", DataFitted: "R2"}) {
		t.Errorf("unexpected key %+v", k)
	}
	if k.String() != "Kex|CPMG|_|R2" {
		t.Errorf("unexpected rebuilt key %q", k.String())
	}

	_, err = ParseBarKey("Kex|CPMG|R2")
	pe, ok := werrors.AsPlotError(err)
	if !ok || pe.Code != werrors.ErrDataMalformedKey {
		t.Fatalf("expected malformed key error, got %v", err)
	}
	if pe.Context["key"] != "Kex|CPMG|R2" {
		t.Errorf("expected raw key in context, got %q", pe.Context["key"])
	}
}

// -----------------------------------------------------------------------------
// Subplot Tests
// -----------------------------------------------------------------------------

func TestUnpack(t *testing.T) {
	s := NewSubplot("t", "x", "y", PlotScatter)
	namer := NewVarNamer()

	err := s.Unpack(
		[][]float64{{0, 1, 0.1}, {1, 2, 0.1}},
		[][]float64{{0, 1.1}, {0.5, 1.4}, {1, 1.9}},
		SeriesName{Base: "res12", Index: 1}, namer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Unpack([][]float64{{5, 6, 0.2}}, nil, SeriesName{Base: "res12", Index: 2}, namer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(s.X[0], []float64{0, 1}) || !reflect.DeepEqual(s.Err[0], []float64{0.1, 0.1}) {
		t.Errorf("unexpected raw columns %v %v", s.X[0], s.Err[0])
	}
	if len(s.FittedX[0]) != 3 || s.HasFitted(1) {
		t.Errorf("unexpected fitted columns %v", s.FittedX)
	}
	wantVars := []string{"res12_raw_X_1", "res12_raw_X_2"}
	if !reflect.DeepEqual(s.XVar, wantVars) {
		t.Errorf("expected %v, got %v", wantVars, s.XVar)
	}
	if s.FittedYVar[0] != "res12_fitted_Y_1" || s.FittedYVar[1] != "" {
		t.Errorf("unexpected fitted vars %v", s.FittedYVar)
	}
	if !s.AnyFitted() {
		t.Error("expected AnyFitted")
	}
}

func TestUnpack_ShapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		raw    [][]float64
		fitted [][]float64
	}{
		{"ragged raw", [][]float64{{0, 1, 0.1}, {1, 2}}, nil},
		{"too few columns", [][]float64{{0, 1}}, nil},
		{"empty raw", nil, nil},
		{"ragged fitted", [][]float64{{0, 1, 0.1}}, [][]float64{{0, 1}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSubplot("t", "x", "y", PlotScatter)
			err := s.Unpack(tt.raw, tt.fitted, SeriesName{Base: "res7"}, NewVarNamer())
			pe, ok := werrors.AsPlotError(err)
			if !ok || pe.Code != werrors.ErrDataShapeMismatch {
				t.Fatalf("expected DATA_SHAPE, got %v", err)
			}
			if pe.Context["group"] != "res7" {
				t.Errorf("expected group context res7, got %q", pe.Context["group"])
			}
			if s.Len() != 0 {
				t.Error("expected subplot to be unchanged")
			}
		})
	}
}

func TestSetLegend_Disambiguates(t *testing.T) {
	s := NewSubplot("t", "x", "y", PlotScatter)
	s.SetLegend([]string{"A", "B", "A", "A (2)"})
	want := []string{"A", "B", "A (3)", "A (2)"}
	if !reflect.DeepEqual(s.Legend, want) {
		t.Errorf("expected %v, got %v", want, s.Legend)
	}
}

func TestMarkerSize(t *testing.T) {
	s := &Subplot{X: [][]float64{{0, 1, 2}, {0, 1, 1}}}
	if s.MarkerSize(0) != MarkerSizeDefault {
		t.Errorf("expected default size for distinct x")
	}
	if s.MarkerSize(1) != MarkerSizeReduced {
		t.Errorf("expected reduced size for repeated x")
	}
}

func TestValidate(t *testing.T) {
	s := NewSubplot("t", "x", "y", PlotScatter)
	namer := NewVarNamer()
	if err := s.Unpack([][]float64{{0, 1, 0.1}}, nil, SeriesName{Base: "a"}, namer); err != nil {
		t.Fatal(err)
	}
	if err := s.Validate(); err == nil {
		t.Error("expected error without legend and colours")
	}
	s.SetLegend([]string{"a"})
	s.SetColors([]Color{ScatterColor(0, 1)})
	if err := s.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Naming and Config Tests
// -----------------------------------------------------------------------------

func TestVarNamer(t *testing.T) {
	n := NewVarNamer()
	a := n.Name(SeriesName{Base: "R2"}, TagRaw, TagX)
	b := n.Name(SeriesName{Base: "R2"}, TagRaw, TagX)
	c := n.Name(SeriesName{Base: "2 fit-β"}, TagFitted, TagY)

	if a != "R2_raw_X" || b != "R2_raw_X_2" {
		t.Errorf("unexpected names %q %q", a, b)
	}
	if c != "v2_fit___fitted_Y" {
		t.Errorf("unexpected sanitized name %q", c)
	}
}

func TestConfigValidate(t *testing.T) {
	c := Config{Backend: BackendGeneral, Ranges: [4]float64{0, 10, 0, 5}}
	if err := c.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	c.Ranges = [4]float64{10, 0, 0, 5}
	if err := c.Validate(); err == nil {
		t.Error("expected error for inverted x range")
	}
	if err := (Config{Ranges: [4]float64{0, 1, 0, 1}}).Validate(); err == nil {
		t.Error("expected error without backend")
	}
	if len(c.EffectivePalette()) != len(DefaultPalette()) {
		t.Error("expected default palette for empty configuration")
	}
}
