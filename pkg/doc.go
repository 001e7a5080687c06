// Package pkg provides the core libraries for figstyle template extraction.
//
// # Overview
//
// figstyle turns a chart figure (a list of data traces plus a layout) into a
// style-only template: every presentational value is kept, every value that
// carries data is dropped. Templates can be merged with other templates,
// stored in a named library, and served over HTTP. The pkg directory is
// organized into three areas:
//
//  1. Core - [figure], [schema], [template]: value model, attribute
//     classification, extraction and merging
//  2. Infrastructure - [cache], [store], [observability], [errors],
//     [buildinfo]: caching, persistence, hooks, coded errors
//  3. Entry points - [pipeline], [server], [treeviz]: orchestration used by
//     the CLI and the HTTP API, plus template visualization
//
// # Architecture
//
// The typical data flow through figstyle:
//
//	Figure document (JSON, JSONC, YAML)
//	         ↓
//	    [figure] package (ordered value tree)
//	         ↓
//	    [template] package (schema-guided extraction, merge with prior)
//	         ↓
//	    [cache] / [store] (memoize, persist)
//	         ↓
//	    JSON/YAML template, DOT/SVG tree
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/figstyle/pkg/figure"
//	    "github.com/matzehuels/figstyle/pkg/schema"
//	    "github.com/matzehuels/figstyle/pkg/template"
//	)
//
//	fig, _ := figure.Load("chart.json")
//	t := template.Make(fig, schema.Default())
//	out, _ := t.MarshalJSON()
//
// # Main Packages
//
// [figure] - Insertion-ordered objects, sequences and scalars decoded from
// JSON, JSON with comments, or YAML, plus a dotted path accessor
// ("annotations[0].font.size").
//
// [schema] - Attribute classification. The file-driven Registry answers, for
// any trace or layout path, the value type, whether the attribute is a style,
// whether it accepts per-point arrays, and whether it is an array-linked
// group such as annotations.
//
// [template] - Extraction (Extract, Make) and composition (Merge). Named
// group items are matched by name, unnamed items by position.
//
// [pipeline] - Runner shared by the CLI and HTTP API: cache lookup, parse,
// extract, merge, instrumentation.
//
// [cache] - File, Redis, and null caches keyed by figure and schema hash.
//
// [store] - Named template library on the filesystem or in MongoDB.
//
// [server] - chi HTTP API over the pipeline and the library.
//
// [treeviz] - Graphviz drawing of template structure.
//
// # Testing
//
//	go test ./...                                    # All tests
//	FIGSTYLE_TEST_REDIS=localhost:6379 go test ./pkg/cache
//	FIGSTYLE_TEST_MONGO=mongodb://localhost go test ./pkg/store
package pkg
