// Package pipeline runs template extraction and composition with caching.
//
// The CLI and the HTTP server both go through a [Runner] so that caching,
// logging, and instrumentation behave the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, schema.Default(), logger)
//	result, err := runner.Make(ctx, figureJSON, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := pipeline.Encode(result.Template, pipeline.FormatJSON)
package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/template"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
}

// ValidateFormat checks that format is a supported output format.
func ValidateFormat(format string) error {
	return ferrors.ValidateFormat(format, FormatJSON, FormatYAML)
}

// Options controls one extraction.
type Options struct {
	// Prior is merged into the extracted template instead of the template
	// carried in the figure's layout.
	Prior *template.Template

	// SkipPrior ignores the template carried in the figure's layout.
	SkipPrior bool

	// Refresh bypasses cache reads but still writes the result.
	Refresh bool
}

// Stats describes the work done for one result.
type Stats struct {
	// Traces counts the per-trace templates in the result, including
	// buckets carried over from a prior template.
	Traces   int           `json:"traces"`
	Leaves   int           `json:"leaves"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of [Runner.Make].
type Result struct {
	Template   *template.Template
	FigureHash string
	CacheHit   bool
	Stats      Stats
}

// Encode serializes t as indented JSON or YAML, preserving key order.
func Encode(t *template.Template, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, ValidateFormat(format)
	}
}
