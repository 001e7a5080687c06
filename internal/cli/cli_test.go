package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/figstyle/internal/config"
	"github.com/matzehuels/figstyle/pkg/cache"
	ferrors "github.com/matzehuels/figstyle/pkg/errors"
	"github.com/matzehuels/figstyle/pkg/figure"
	"github.com/matzehuels/figstyle/pkg/observability"
	"github.com/matzehuels/figstyle/pkg/pipeline"
	"github.com/matzehuels/figstyle/pkg/schema"
	"github.com/matzehuels/figstyle/pkg/template"
)

const testFigure = `{
	"data": [{"type": "bar", "x": [1, 2], "y": [3, 4], "marker": {"color": "red"}}],
	"layout": {"font": {"size": 12}, "xaxis": {"tickvals": [1, 2]}}
}`

// newTestCLI returns a CLI whose config, cache, and library live in
// temporary directories. The working directory is a fresh temp dir.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(observability.Reset)
	return New(io.Discard, LogInfo)
}

func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return name
}

func loadTemplate(t *testing.T, path string) *template.Template {
	t.Helper()
	tmpl, err := template.Load(path)
	if err != nil {
		t.Fatalf("template.Load(%s): %v", path, err)
	}
	return tmpl
}

func TestMakeCommand(t *testing.T) {
	c := newTestCLI(t)
	writeFile(t, "chart.json", testFigure)

	if err := run(t, c, "make", "chart.json", "-o", "out.json", "--save", "house"); err != nil {
		t.Fatalf("make: %v", err)
	}

	tmpl := loadTemplate(t, "out.json")
	if v, _ := figure.GetPath(tmpl.Layout, "font.size"); v != int64(12) {
		t.Errorf("layout.font.size = %v, want 12", v)
	}
	if _, ok := figure.GetPath(tmpl.Layout, "xaxis.tickvals"); ok {
		t.Error("data attribute leaked into template")
	}
	if n := len(tmpl.Traces("bar")); n != 1 {
		t.Errorf("bar templates = %d, want 1", n)
	}

	if err := run(t, c, "store", "get", "house", "-o", "stored.json"); err != nil {
		t.Fatalf("store get: %v", err)
	}
	if !loadTemplate(t, "stored.json").Equal(tmpl) {
		t.Error("stored template differs from make output")
	}

	if err := run(t, c, "store", "delete", "house"); err != nil {
		t.Fatalf("store delete: %v", err)
	}
	err := run(t, c, "store", "get", "house")
	if !ferrors.Is(err, ferrors.ErrCodeTemplateNotFound) {
		t.Errorf("store get after delete: got %v, want TEMPLATE_NOT_FOUND", err)
	}
}

func TestMakeCommandPrior(t *testing.T) {
	c := newTestCLI(t)
	writeFile(t, "chart.json", testFigure)
	writeFile(t, "prior.yaml", "layout:\n  font:\n    family: Inter\n    size: 9\n")

	if err := run(t, c, "make", "chart.json", "--template", "prior.yaml", "-o", "out.json"); err != nil {
		t.Fatalf("make: %v", err)
	}
	tmpl := loadTemplate(t, "out.json")
	if v, _ := figure.GetPath(tmpl.Layout, "font.family"); v != "Inter" {
		t.Errorf("font.family = %v, want prior value", v)
	}
	if v, _ := figure.GetPath(tmpl.Layout, "font.size"); v != int64(12) {
		t.Errorf("font.size = %v, want figure value 12", v)
	}
}

func TestMakeCommandErrors(t *testing.T) {
	c := newTestCLI(t)
	writeFile(t, "chart.json", testFigure)
	writeFile(t, "broken.json", `[1, 2]`)

	tests := []struct {
		name string
		args []string
		code ferrors.Code
	}{
		{"bad format", []string{"make", "chart.json", "--format", "xml"}, ferrors.ErrCodeInvalidFormat},
		{"not a figure", []string{"make", "broken.json"}, ferrors.ErrCodeInvalidFigure},
		{"unknown library template", []string{"make", "chart.json", "--from", "nope"}, ferrors.ErrCodeTemplateNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, c, tt.args...)
			if !ferrors.Is(err, tt.code) {
				t.Errorf("got %v, want code %s", err, tt.code)
			}
		})
	}

	if err := run(t, c, "make", "missing.json"); err == nil {
		t.Error("missing figure file should fail")
	}
}

func TestMergeCommand(t *testing.T) {
	c := newTestCLI(t)
	writeFile(t, "old.json", `{"layout": {"font": {"size": 10, "family": "Inter"}, "paper_bgcolor": "white"}}`)
	writeFile(t, "new.json", `{"layout": {"font": {"size": 14}}}`)

	if err := run(t, c, "merge", "old.json", "new.json", "-o", "merged.json"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	got, err := loadTemplate(t, "merged.json").MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	want := `{"data":{},"layout":{"font":{"size":14,"family":"Inter"},"paper_bgcolor":"white"}}`
	if string(got) != want {
		t.Errorf("merged = %s\nwant %s", got, want)
	}
}

func TestTreeCommand(t *testing.T) {
	c := newTestCLI(t)
	writeFile(t, "house.json", `{"layout": {"font": {"size": 10}}}`)

	if err := run(t, c, "tree", "house.json", "-o", "house.dot"); err != nil {
		t.Fatalf("tree: %v", err)
	}
	data, err := os.ReadFile("house.dot")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("digraph G {")) || !bytes.Contains(data, []byte("size = 10")) {
		t.Errorf("unexpected DOT output:\n%s", data)
	}

	err = run(t, c, "tree", "house.json", "-f", "png")
	if !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
		t.Errorf("png to stdout: got %v, want INVALID_INPUT", err)
	}
}

func TestLookupCommand(t *testing.T) {
	c := newTestCLI(t)
	if err := run(t, c, "lookup", "layout", "font.size"); err != nil {
		t.Errorf("lookup layout font.size: %v", err)
	}
	if err := run(t, c, "lookup", "sankey", "x"); !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
		t.Errorf("unknown scope: got %v", err)
	}
	if err := run(t, c, "lookup", "layout", "nonsense"); !ferrors.Is(err, ferrors.ErrCodeNotFound) {
		t.Errorf("unknown path: got %v", err)
	}
}

func TestDescribeAttribute(t *testing.T) {
	tests := []struct {
		info schema.AttributeInfo
		want string
	}{
		{schema.AttributeInfo{ValType: "color", Role: schema.RoleStyle}, "yes"},
		{schema.AttributeInfo{ValType: "number", Role: schema.RoleStyle, ArrayOK: true}, "yes, unless given per point"},
		{schema.AttributeInfo{ValType: schema.ValTypeDataArray}, "no (data)"},
		{schema.AttributeInfo{ValType: "string", NoTemplating: true}, "no (excluded from templates)"},
		{schema.AttributeInfo{ValType: "any", Role: schema.RoleInfo}, "no (not a style attribute)"},
		{schema.AttributeInfo{}, "descends"},
	}
	for _, tt := range tests {
		rows := describeAttribute(tt.info)
		last := rows[len(rows)-1]
		if last[0] != "templated" || last[1] != tt.want {
			t.Errorf("describeAttribute(%+v) templated = %q, want %q", tt.info, last[1], tt.want)
		}
	}
}

func TestNewCacheBackends(t *testing.T) {
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     config.Config
		noCache bool
		want    string
	}{
		{"disabled by flag", config.Config{Cache: config.CacheConfig{Backend: config.BackendFile}}, true, "null"},
		{"none backend", config.Config{Cache: config.CacheConfig{Backend: config.BackendNone}}, false, "null"},
		{"file backend", config.Config{Cache: config.CacheConfig{Backend: config.BackendFile, Dir: t.TempDir()}}, false, "file"},
		{"unreachable redis", config.Config{
			Cache: config.CacheConfig{Backend: config.BackendRedis},
			Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
		}, false, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.newCache(ctx, &tt.cfg, tt.noCache)
			defer got.Close()
			var kind string
			switch got.(type) {
			case cache.NullCache:
				kind = "null"
			case *cache.FileCache:
				kind = "file"
			default:
				kind = "other"
			}
			if kind != tt.want {
				t.Errorf("newCache() = %T, want %s cache", got, tt.want)
			}
		})
	}
}

func TestNewRunnerScopedKeys(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.cfg = &config.Config{Cache: config.CacheConfig{Backend: config.BackendNone, Prefix: "figstyle:staging:"}}

	runner, err := c.newRunner(context.Background(), false)
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	defer runner.Close()

	key := runner.Keyer.TemplateKey("fig", "schema", cache.TemplateKeyOpts{})
	if !strings.HasPrefix(key, "figstyle:staging:") {
		t.Errorf("TemplateKey() = %q, want the configured prefix", key)
	}
}

func TestClearFileCache(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, key, []byte("{}"), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	n, gotDir, err := clearFileCache(&config.Config{Cache: config.CacheConfig{Dir: dir}})
	if err != nil {
		t.Fatalf("clearFileCache: %v", err)
	}
	if n != 3 || gotDir != dir {
		t.Errorf("clearFileCache() = %d, %q; want 3, %q", n, gotDir, dir)
	}
}

func TestLoadSchemaFlag(t *testing.T) {
	c := newTestCLI(t)
	reg, err := c.loadSchema()
	if err != nil || reg != schema.Default() {
		t.Fatalf("loadSchema() without path = %v, %v; want default", reg, err)
	}

	path := writeFile(t, "schema.toml", string(schema.DefaultSource()))
	c.schemaPath = path
	reg, err = c.loadSchema()
	if err != nil {
		t.Fatalf("loadSchema(%s): %v", path, err)
	}
	if reg.Hash() != schema.Default().Hash() {
		t.Error("same schema source should hash the same")
	}

	c.schemaPath = filepath.Join(t.TempDir(), "missing.toml")
	if _, err := c.loadSchema(); err == nil {
		t.Error("missing schema file should fail")
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	toFile, err := writeOutput(path, []byte("hello"))
	if err != nil || !toFile {
		t.Fatalf("writeOutput(file) = %v, %v", toFile, err)
	}
	if data, _ := os.ReadFile(path); string(data) != "hello" {
		t.Errorf("file content = %q", data)
	}

	_, err = writeOutput(filepath.Join(dir, "missing", "out.txt"), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "write") {
		t.Errorf("writeOutput into missing dir: %v", err)
	}
}

func TestEncodeForStdoutHasTrailingNewline(t *testing.T) {
	out, err := pipeline.Encode(template.New(), pipeline.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		t.Error("encoded template should end with a newline")
	}
}

func TestCLILogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected log output: %q", buf.String())
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}
