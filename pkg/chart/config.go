package chart

import (
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// Config is the per-export configuration of a chart.
type Config struct {
	// Title prefixes every residue panel title.
	Title string

	// XLabel and YLabel label the residue panels.
	XLabel string
	YLabel string

	// Ranges is [xmin, xmax, ymin, ymax] for the residue panels.
	Ranges [4]float64

	// Backend selects the output syntax.
	Backend Backend

	// Palette lists the declared colours. An empty palette falls back to
	// DefaultPalette.
	Palette Palette

	// File is the destination path of the generated script.
	File string
}

// XRange returns the configured x interval.
func (c Config) XRange() [2]float64 {
	return [2]float64{c.Ranges[0], c.Ranges[1]}
}

// YRange returns the configured y interval.
func (c Config) YRange() [2]float64 {
	return [2]float64{c.Ranges[2], c.Ranges[3]}
}

// EffectivePalette returns a copy of the configured palette, or the
// default palette when none is set.
func (c Config) EffectivePalette() Palette {
	if len(c.Palette) == 0 {
		return DefaultPalette()
	}
	return c.Palette.Clone()
}

// Validate checks the backend and axis ranges.
func (c Config) Validate() error {
	if !c.Backend.Valid() {
		return werrors.New(werrors.ErrConfigUnknownBackend, werrors.CategoryConfig,
			"no export type selected").
			WithContext("type", c.Backend.String())
	}
	if !(c.Ranges[0] < c.Ranges[1]) || !(c.Ranges[2] < c.Ranges[3]) {
		return werrors.ValidationErrorf(werrors.ErrValidationInvalidValue,
			"ranges must satisfy xmin < xmax and ymin < ymax, got %v", c.Ranges).
			WithContext("field", "ranges")
	}
	return nil
}
