package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ByLCY/pagelayout/layout"
)

func quietEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PGL_PAGE", "PGL_PORTRAIT", "PGL_SHEETS", "PGL_BACKEND", "PGL_FORMAT", "PGL_UNITS",
		"PGL_CLIP_REPEATS", "PGL_TITLE", "PGL_LOG_FORMAT", "PGL_LOG_FILE", "PGL_LOG_SOURCE"} {
		t.Setenv(k, "")
	}
	t.Setenv("PGL_LOG_LEVEL", "error")
}

func TestRunDefaultLayoutToPDF(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	opts := cliOptions{
		configPath: filepath.Join(dir, "absent.yaml"),
		output:     filepath.Join(dir, "out", "sheet.pdf"),
		debugPath:  filepath.Join(dir, "out", "sheet.json"),
		dumpPath:   filepath.Join(dir, "out", "layout.kicad_wks"),
	}
	files, err := run(opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(files) != 1 || files[0] != opts.output {
		t.Fatalf("files = %v", files)
	}
	data, err := os.ReadFile(opts.output)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("pdf output missing: %v", err)
	}
	debug, err := os.ReadFile(opts.debugPath)
	if err != nil || !strings.Contains(string(debug), "\"sheets\"") {
		t.Fatalf("debug dump missing: %v", err)
	}

	// 写出的布局可以重新载入
	m, err := layout.LoadFile(opts.dumpPath, layout.ParseOptions{})
	if err != nil {
		t.Fatalf("reload dump: %v", err)
	}
	if m.Count() != layout.DefaultLayout().Count() {
		t.Fatalf("dump has %d items, want %d", m.Count(), layout.DefaultLayout().Count())
	}
}

func TestRunWritesOneSVGPerSheet(t *testing.T) {
	quietEnv(t)
	t.Setenv("PGL_SHEETS", "2")
	dir := t.TempDir()
	opts := cliOptions{
		configPath: filepath.Join(dir, "absent.yaml"),
		output:     filepath.Join(dir, "sheet.svg"),
		format:     "SVG",
	}
	files, err := run(opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{filepath.Join(dir, "sheet-1.svg"), filepath.Join(dir, "sheet-2.svg")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil || !bytes.Contains(data, []byte("<svg")) {
			t.Fatalf("%s: not an svg (%v)", f, err)
		}
	}
}

func TestRunFPDFBackendWithLayoutFile(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.kicad_wks")
	src := `(page_layout
  (setup (textsize 1.5 1.5) (linewidth 0.15) (left_margin 10) (right_margin 10) (top_margin 10) (bottom_margin 10))
  (rect (start 0 0 ltcorner) (end 0 0))
  (tbtext "%F %S/%N" (pos 2 2) (name "file"))
)
`
	if err := os.WriteFile(in, []byte(src), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	opts := cliOptions{
		input:      in,
		configPath: filepath.Join(dir, "absent.yaml"),
		output:     filepath.Join(dir, "frame.pdf"),
		backend:    "fpdf",
	}
	if _, err := run(opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(opts.output); err != nil {
		t.Fatalf("output: %v", err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	quietEnv(t)
	dir := t.TempDir()
	base := cliOptions{configPath: filepath.Join(dir, "absent.yaml"), output: filepath.Join(dir, "x.pdf")}

	missing := base
	missing.input = filepath.Join(dir, "missing.kicad_wks")
	if _, err := run(missing); err == nil {
		t.Fatalf("expected error for missing layout file")
	}

	svgFPDF := base
	svgFPDF.backend, svgFPDF.format = "fpdf", "svg"
	if _, err := run(svgFPDF); err == nil {
		t.Fatalf("expected error for fpdf svg output")
	}
}
