package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/pagelayout/config"
	"github.com/ByLCY/pagelayout/layout"
	"github.com/ByLCY/pagelayout/logging"
	"github.com/ByLCY/pagelayout/renderer"
	canvasrenderer "github.com/ByLCY/pagelayout/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/pagelayout/renderer/fpdf"
	"github.com/ByLCY/pagelayout/worksheet"
)

const appVersion = "pagelayout 0.3.0"

type cliOptions struct {
	input      string
	configPath string
	output     string
	debugPath  string
	dumpPath   string
	format     string
	backend    string
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.input, "in", "", "页面布局描述文件路径（为空时使用内置默认布局）")
	flag.StringVar(&opts.configPath, "config", "pagelayout.yaml", "YAML 配置文件路径")
	flag.StringVar(&opts.output, "out", "output/worksheet.pdf", "输出文件路径")
	flag.StringVar(&opts.debugPath, "debug", "", "绘制列表调试 JSON 输出路径")
	flag.StringVar(&opts.dumpPath, "dump", "", "将载入的布局重新写出到该路径")
	flag.StringVar(&opts.format, "format", "", "输出格式 pdf|svg（覆盖配置）")
	flag.StringVar(&opts.backend, "backend", "", "绘图后端 canvas|fpdf（覆盖配置）")
	flag.Parse()

	files, err := run(opts)
	if err != nil {
		log.Fatalf("生成图纸失败: %v", err)
	}
	for _, f := range files {
		fmt.Printf("已生成：%s\n", f)
	}
}

// run 串联配置、布局载入、绘制列表构建与绘图，返回写出的文件。
func run(opts cliOptions) ([]string, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.format != "" {
		cfg.Output.Format = strings.ToLower(opts.format)
	}
	if opts.backend != "" {
		cfg.Output.Backend = strings.ToLower(opts.backend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.Init(cfg.Logging)

	model, err := loadModel(opts.input)
	if err != nil {
		return nil, err
	}
	if opts.dumpPath != "" {
		if err := ensureDir(opts.dumpPath); err != nil {
			return nil, err
		}
		if err := layout.SaveFile(opts.dumpPath, model); err != nil {
			return nil, fmt.Errorf("写出布局失败: %w", err)
		}
	}

	page, err := cfg.PageInfo()
	if err != nil {
		return nil, err
	}
	upm, err := cfg.UnitsPerMM()
	if err != nil {
		return nil, err
	}
	r, err := newRenderer(cfg, upm)
	if err != nil {
		return nil, err
	}

	buildOpts := worksheet.BuildOptions{
		ClipRepeats:      cfg.Output.ClipRepeats,
		CommentSeparator: cfg.Output.CommentSeparator,
		Logger:           logging.WithComponent("worksheet"),
	}
	// 绘图后端能测量文本时，用它计算文本框
	if m, ok := r.(worksheet.TextMeasurer); ok {
		buildOpts.Measurer = m
	}

	sheets := make([]*worksheet.List, 0, cfg.Document.SheetCount)
	for i := 1; i <= cfg.Document.SheetCount; i++ {
		ctx := cfg.Context(i, page, upm)
		ctx.AppVersion = appVersion
		if ctx.FileName == "" && opts.input != "" {
			ctx.FileName = filepath.Base(opts.input)
		}
		sheet := worksheet.Build(model, ctx, buildOpts)
		logger.Debug("图纸已构建", slog.Int("sheet", i), slog.Int("items", sheet.Len()))
		sheets = append(sheets, sheet)
	}

	if opts.debugPath != "" {
		if err := ensureDir(opts.debugPath); err != nil {
			return nil, err
		}
		if err := worksheet.WriteDebugJSON(sheets, opts.debugPath); err != nil {
			return nil, fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	if err := ensureDir(opts.output); err != nil {
		return nil, err
	}
	// SVG 每张图纸一个文件
	if cfg.Output.Format == config.FormatSVG && len(sheets) > 1 {
		ext := filepath.Ext(opts.output)
		base := strings.TrimSuffix(opts.output, ext)
		var files []string
		for _, sheet := range sheets {
			path := fmt.Sprintf("%s-%d%s", base, sheet.SheetIndex, ext)
			if err := renderTo(r, []*worksheet.List{sheet}, path); err != nil {
				return nil, err
			}
			files = append(files, path)
		}
		return files, nil
	}
	if err := renderTo(r, sheets, opts.output); err != nil {
		return nil, err
	}
	return []string{opts.output}, nil
}

func loadModel(path string) (*layout.Model, error) {
	if path == "" {
		return layout.DefaultLayout(), nil
	}
	model, err := layout.LoadFile(path, layout.ParseOptions{Logger: logging.WithComponent("layout")})
	if err != nil {
		return nil, fmt.Errorf("无法载入布局文件 %s: %w", path, err)
	}
	return model, nil
}

func newRenderer(cfg config.Config, upm float64) (renderer.Renderer, error) {
	meta := renderer.Metadata{
		Title:   cfg.Document.TitleBlock.Title,
		Subject: "Worksheet",
		Author:  cfg.Document.TitleBlock.Company,
		Creator: appVersion,
	}
	switch cfg.Output.Backend {
	case config.BackendCanvas:
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			Format:     cfg.Output.Format,
			UnitsPerMM: upm,
			Meta:       meta,
			Font:       canvasrenderer.Resource{Path: cfg.Output.Font},
			Logger:     logging.WithComponent("canvas"),
		}), nil
	case config.BackendFPDF:
		return fpdfrenderer.NewRenderer(fpdfrenderer.Options{
			UnitsPerMM: upm,
			Meta:       meta,
			Logger:     logging.WithComponent("fpdf"),
		}), nil
	}
	return nil, fmt.Errorf("未知的绘图后端 %q", cfg.Output.Backend)
}

func renderTo(r renderer.Renderer, sheets []*worksheet.List, path string) error {
	data, err := r.Render(sheets)
	if err != nil {
		return fmt.Errorf("绘图失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}
