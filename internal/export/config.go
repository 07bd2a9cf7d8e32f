// Package export writes resumes as downloadable documents.
package export

import "fmt"

// PageConfig is the fixed page geometry used by WritePDF. Lengths are in
// points.
type PageConfig struct {
	Size        string  `yaml:"size" json:"size"`               // A4, Letter, ...
	Orientation string  `yaml:"orientation" json:"orientation"` // P or L
	Margin      float64 `yaml:"margin" json:"margin"`
	FontFamily  string  `yaml:"font_family" json:"font_family"`
	FontSize    float64 `yaml:"font_size" json:"font_size"`
	LineHeight  float64 `yaml:"line_height" json:"line_height"`
}

// DefaultPageConfig returns A4 portrait, 40pt margins, Courier 10pt on a
// 14pt line.
func DefaultPageConfig() PageConfig {
	return PageConfig{
		Size:        "A4",
		Orientation: "P",
		Margin:      40,
		FontFamily:  "Courier",
		FontSize:    10,
		LineHeight:  14,
	}
}

// WithDefaults fills zero fields from DefaultPageConfig.
func (c PageConfig) WithDefaults() PageConfig {
	d := DefaultPageConfig()
	if c.Size == "" {
		c.Size = d.Size
	}
	if c.Orientation == "" {
		c.Orientation = d.Orientation
	}
	if c.Margin == 0 {
		c.Margin = d.Margin
	}
	if c.FontFamily == "" {
		c.FontFamily = d.FontFamily
	}
	if c.FontSize == 0 {
		c.FontSize = d.FontSize
	}
	if c.LineHeight == 0 {
		c.LineHeight = d.LineHeight
	}
	return c
}

// Validate rejects geometry that cannot hold a single line.
func (c PageConfig) Validate() error {
	switch {
	case c.Margin < 0:
		return fmt.Errorf("margin must not be negative")
	case c.FontSize <= 0:
		return fmt.Errorf("font size must be positive")
	case c.LineHeight < c.FontSize:
		return fmt.Errorf("line height %.1f is smaller than font size %.1f", c.LineHeight, c.FontSize)
	case c.Orientation != "P" && c.Orientation != "L":
		return fmt.Errorf("orientation must be P or L, got %q", c.Orientation)
	}
	return nil
}
