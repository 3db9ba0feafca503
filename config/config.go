// Package config loads the plotting configuration: page, title block, output
// backend and logging. Values come from a YAML file with PGL_* environment
// variables applied on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/pagelayout/layout"
	"github.com/ByLCY/pagelayout/logging"
	"github.com/ByLCY/pagelayout/worksheet"
)

// PageConfig 纸张设置。Format 为预设名称或 "User"；User 纸张使用 Width/Height（可带单位后缀）。
type PageConfig struct {
	Format   string `yaml:"format"`
	Portrait bool   `yaml:"portrait"`
	Width    string `yaml:"width,omitempty"`
	Height   string `yaml:"height,omitempty"`
	Margin   string `yaml:"margin,omitempty"` // 统一页边距，为空时使用布局 setup
}

// DocumentConfig 绑定到标题栏标记的文档信息。
type DocumentConfig struct {
	SheetCount int                  `yaml:"sheet_count"`
	FileName   string               `yaml:"file_name,omitempty"`
	SheetPath  string               `yaml:"sheet_path,omitempty"`
	Layer      string               `yaml:"layer,omitempty"`
	TitleBlock worksheet.TitleBlock `yaml:"title_block"`
	Vars       map[string]any       `yaml:"vars,omitempty"`
}

// OutputConfig 绘图输出设置。
type OutputConfig struct {
	Backend          string `yaml:"backend"` // canvas | fpdf
	Format           string `yaml:"format"`  // pdf | svg
	Units            string `yaml:"units"`   // 绘制列表单位：mm | mil | nm | pt
	ClipRepeats      bool   `yaml:"clip_repeats"`
	CommentSeparator string `yaml:"comment_separator,omitempty"`
	Font             string `yaml:"font,omitempty"` // canvas 后端的常规字体文件
}

// Config is the root configuration structure.
type Config struct {
	ConfigVersion int             `yaml:"config_version"`
	Page          PageConfig      `yaml:"page"`
	Document      DocumentConfig  `yaml:"document"`
	Output        OutputConfig    `yaml:"output"`
	Logging       logging.Options `yaml:"logging"`
}

// Env var names used as overrides. Logging uses the PGL_LOG_* variables of the logging package.
const (
	EnvPage        = "PGL_PAGE"
	EnvPortrait    = "PGL_PORTRAIT"
	EnvSheets      = "PGL_SHEETS"
	EnvBackend     = "PGL_BACKEND"
	EnvFormat      = "PGL_FORMAT"
	EnvUnits       = "PGL_UNITS"
	EnvClipRepeats = "PGL_CLIP_REPEATS"
	EnvTitle       = "PGL_TITLE"
)

// Backends and formats accepted by Validate.
const (
	BackendCanvas = "canvas"
	BackendFPDF   = "fpdf"
	FormatPDF     = "pdf"
	FormatSVG     = "svg"
)

// Defaults returns the application defaults.
func Defaults() Config {
	return Config{
		ConfigVersion: 1,
		Page:          PageConfig{Format: "A4"},
		Document:      DocumentConfig{SheetCount: 1},
		Output: OutputConfig{
			Backend:     BackendCanvas,
			Format:      FormatPDF,
			Units:       "mm",
			ClipRepeats: true,
		},
		Logging: logging.Options{Level: "info", Format: "console"},
	}
}

// Load reads the config file (if present) over the defaults and applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("读取配置文件失败: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
			}
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the values that cannot be fixed up silently.
func (c Config) Validate() error {
	switch c.Output.Backend {
	case BackendCanvas, BackendFPDF:
	default:
		return fmt.Errorf("未知的绘图后端 %q", c.Output.Backend)
	}
	switch c.Output.Format {
	case FormatPDF:
	case FormatSVG:
		if c.Output.Backend == BackendFPDF {
			return fmt.Errorf("fpdf 后端只支持 pdf 输出")
		}
	default:
		return fmt.Errorf("未知的输出格式 %q", c.Output.Format)
	}
	if c.Document.SheetCount < 1 {
		return fmt.Errorf("图纸数量必须大于 0，实际 %d", c.Document.SheetCount)
	}
	if _, err := c.UnitsPerMM(); err != nil {
		return err
	}
	if _, err := c.PageInfo(); err != nil {
		return err
	}
	return nil
}

// PageInfo resolves the configured page.
func (c Config) PageInfo() (layout.PageInfo, error) {
	var page layout.PageInfo
	if strings.EqualFold(c.Page.Format, "user") {
		w, err := parseMM(c.Page.Width)
		if err != nil {
			return page, fmt.Errorf("自定义纸张宽度: %w", err)
		}
		h, err := parseMM(c.Page.Height)
		if err != nil {
			return page, fmt.Errorf("自定义纸张高度: %w", err)
		}
		if w <= 0 || h <= 0 {
			return page, fmt.Errorf("自定义纸张尺寸无效: %g x %g mm", w, h)
		}
		page = layout.CustomPage(w, h)
	} else {
		var err error
		if page, err = layout.LookupPage(c.Page.Format, c.Page.Portrait); err != nil {
			return page, err
		}
	}
	if strings.TrimSpace(c.Page.Margin) != "" {
		m, err := parseMM(c.Page.Margin)
		if err != nil {
			return page, fmt.Errorf("页边距: %w", err)
		}
		page.Margins = &layout.Margin{Top: m, Right: m, Bottom: m, Left: m}
	}
	return page, nil
}

// UnitsPerMM returns the drawing units per millimeter for Output.Units.
func (c Config) UnitsPerMM() (float64, error) {
	return layout.ScaleFor(c.Output.Units)
}

// Context returns the build context for one sheet.
func (c Config) Context(sheet int, page layout.PageInfo, unitsPerMM float64) worksheet.Context {
	return worksheet.Context{
		Page:       page,
		TitleBlock: c.Document.TitleBlock,
		SheetIndex: sheet,
		SheetCount: c.Document.SheetCount,
		UnitsPerMM: unitsPerMM,
		FileName:   c.Document.FileName,
		SheetPath:  c.Document.SheetPath,
		LayerName:  c.Document.Layer,
		Vars:       c.Document.Vars,
	}
}

func parseMM(s string) (float64, error) {
	l, err := layout.ParseLength(s)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPage)); v != "" {
		cfg.Page.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPortrait)); v != "" {
		cfg.Page.Portrait = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSheets)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Document.SheetCount = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		cfg.Output.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvUnits)); v != "" {
		cfg.Output.Units = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvClipRepeats)); v != "" {
		cfg.Output.ClipRepeats = truthy(v)
	}
	if v := os.Getenv(EnvTitle); v != "" {
		cfg.Document.TitleBlock.Title = v
	}
	cfg.Logging = logging.ApplyEnv(cfg.Logging)
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}
