package cli

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	logger.Info("extracted template", "traces", 2)
	logger.Debug("template cache hit")

	out := buf.String()
	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(out) {
		t.Errorf("missing HH:MM:SS.ms timestamp: %q", out)
	}
	if !strings.Contains(out, "traces=2") {
		t.Errorf("missing structured field: %q", out)
	}
	if strings.Contains(out, "cache hit") {
		t.Errorf("debug message logged at info level: %q", out)
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Extracted template")

	if !regexp.MustCompile(`Extracted template \(\d+(\.\d+)?[µnm]?s\)`).MatchString(buf.String()) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestMakeLogsExtraction(t *testing.T) {
	c := newTestCLI(t)
	var buf bytes.Buffer
	c.Logger = newLogger(&buf, log.DebugLevel)
	writeFile(t, "house.json", testFigure)

	if err := run(t, c, "make", "house.json", "-o", "house.json.tmpl"); err != nil {
		t.Fatalf("make: %v", err)
	}
	first := buf.String()
	for _, want := range []string{"extracted template", "traces=1", "Extracted template ("} {
		if !strings.Contains(first, want) {
			t.Errorf("first run log missing %q:\n%s", want, first)
		}
	}

	buf.Reset()
	if err := run(t, c, "make", "house.json", "-o", "house.json.tmpl"); err != nil {
		t.Fatalf("make: %v", err)
	}
	if second := buf.String(); !strings.Contains(second, "template cache hit") {
		t.Errorf("second run should log the cache hit:\n%s", second)
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	c := newTestCLI(t)
	var got *log.Logger
	root := c.RootCommand()
	root.AddCommand(&cobra.Command{
		Use: "inspect-logger",
		RunE: func(cmd *cobra.Command, args []string) error {
			got = loggerFromContext(cmd.Context())
			return nil
		},
	})
	root.SetArgs([]string{"inspect-logger"})
	root.SetOut(io.Discard)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got != c.Logger {
		t.Error("subcommands should log through the CLI logger")
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to log.Default()")
	}
}
