// Package config provides configuration management for docx2md.
//
// Settings are resolved in precedence order: built-in defaults, then an
// optional YAML config file, then environment variables prefixed with
// DOCX2MD_ (nesting expressed with underscores, e.g.
// DOCX2MD_EQUATIONS_WIDE_THRESHOLD=250).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docx2md/internal/types"
)

// EnvPrefix is the environment variable prefix for all settings.
const EnvPrefix = "DOCX2MD"

// Config is the full configuration tree.
type Config struct {
	Equations   EquationsConfig   `mapstructure:"equations"`
	Images      ImagesConfig      `mapstructure:"images"`
	Tables      TablesConfig      `mapstructure:"tables"`
	Pandoc      PandocConfig      `mapstructure:"pandoc"`
	Processing  ProcessingConfig  `mapstructure:"processing"`
	Cleanup     CleanupConfig     `mapstructure:"cleanup"`
	UnicodeFix  UnicodeFixConfig  `mapstructure:"unicode_fix"`
	Figures     FiguresConfig     `mapstructure:"figures"`
	FrontMatter FrontMatterConfig `mapstructure:"frontmatter"`
	Batch       BatchConfig       `mapstructure:"batch"`
}

// EquationsConfig controls math delimiters and wide-equation routing.
type EquationsConfig struct {
	InlineDelimiters  []string `mapstructure:"inline_delimiters"`
	DisplayDelimiters []string `mapstructure:"display_delimiters"`
	// WideThreshold is the longest-line length (chars) above which a
	// display equation is wrapped in a scaling directive instead of
	// plain display delimiters.
	WideThreshold int `mapstructure:"wide_threshold"`
}

// InlinePair returns the inline open/close delimiters.
func (e EquationsConfig) InlinePair() (string, string) {
	return e.InlineDelimiters[0], e.InlineDelimiters[1]
}

// DisplayPair returns the display open/close delimiters.
func (e EquationsConfig) DisplayPair() (string, string) {
	return e.DisplayDelimiters[0], e.DisplayDelimiters[1]
}

// ImagesConfig controls media extraction.
type ImagesConfig struct {
	ExtractPath string `mapstructure:"extract_path"`
}

// TablesConfig controls markdown table normalization.
type TablesConfig struct {
	Format      string `mapstructure:"format"`
	HeaderStyle string `mapstructure:"header_style"`
}

// PandocConfig controls the external structural converter invocation.
type PandocConfig struct {
	Binary    string        `mapstructure:"binary"`
	ExtraArgs []string      `mapstructure:"extra_args"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ProcessingConfig enables or disables pipeline stages.
type ProcessingConfig struct {
	MathExtraction      bool `mapstructure:"math_extraction"`
	Cleanup             bool `mapstructure:"cleanup"`
	FixUnicode          bool `mapstructure:"fix_unicode"`
	FixFigures          bool `mapstructure:"fix_figures"`
	FixEquations        bool `mapstructure:"fix_equations"`
	FixDelimiters       bool `mapstructure:"fix_delimiters"`
	ProcessTables       bool `mapstructure:"process_tables"`
	GenerateFrontMatter bool `mapstructure:"generate_frontmatter"`
}

// CleanupConfig enables or disables individual cleanup rules.
type CleanupConfig struct {
	StripTripleDollar  bool `mapstructure:"strip_triple_dollar"`
	RemoveTOC          bool `mapstructure:"remove_toc"`
	StripHeadingMarkup bool `mapstructure:"strip_heading_markup"`
	StripHeadingIDs    bool `mapstructure:"strip_heading_ids"`
	RemoveImageAttrs   bool `mapstructure:"remove_image_attrs"`
	FixImagePaths      bool `mapstructure:"fix_image_paths"`
}

// CustomReplacement is a user-supplied unicode substitution rule. Always
// applies everywhere; Text and Math apply per token context.
type CustomReplacement struct {
	Char   string `mapstructure:"char"`
	Always string `mapstructure:"always"`
	Text   string `mapstructure:"text"`
	Math   string `mapstructure:"math"`
}

// UnicodeFixConfig controls the unicode sanitizer pass.
type UnicodeFixConfig struct {
	Enabled            bool                `mapstructure:"enabled"`
	CustomReplacements []CustomReplacement `mapstructure:"custom_replacements"`
}

// FiguresConfig controls the figure-caption pass.
type FiguresConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// FrontMatterConfig controls YAML front-matter synthesis.
type FrontMatterConfig struct {
	Enabled             bool           `mapstructure:"enabled"`
	ExtractFromBody     bool           `mapstructure:"extract_from_body"`
	StripBodyTitleBlock bool           `mapstructure:"strip_body_title_block"`
	DefaultAuthor       string         `mapstructure:"default_author"`
	MdTexPDF            map[string]any `mapstructure:"mdtexpdf"`
}

// BatchConfig controls multi-document conversion.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from defaults, an optional YAML file, and
// DOCX2MD_-prefixed environment variables. configPath may be empty.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrConfig,
				"failed to read config file", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to parse configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are statically well-formed; Unmarshal cannot fail here.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// DefaultMdTexPDF returns the default typesetting options embedded in
// generated frontmatter. Callers get a fresh copy they may mutate.
func DefaultMdTexPDF() map[string]any {
	return map[string]any{
		"format":               "article",
		"toc":                  true,
		"toc-depth":            2,
		"no_numbers":           true,
		"header_footer_policy": "all",
		"pageof":               true,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("equations.inline_delimiters", []string{"$", "$"})
	v.SetDefault("equations.display_delimiters", []string{"$$", "$$"})
	v.SetDefault("equations.wide_threshold", 300)

	v.SetDefault("images.extract_path", "./media")

	v.SetDefault("tables.format", "pipe")
	v.SetDefault("tables.header_style", "bold")

	v.SetDefault("pandoc.binary", "pandoc")
	v.SetDefault("pandoc.extra_args", []string{"--wrap=none"})
	v.SetDefault("pandoc.timeout", "5m")

	v.SetDefault("processing.math_extraction", true)
	v.SetDefault("processing.cleanup", true)
	v.SetDefault("processing.fix_unicode", true)
	v.SetDefault("processing.fix_figures", true)
	v.SetDefault("processing.fix_equations", true)
	v.SetDefault("processing.fix_delimiters", true)
	v.SetDefault("processing.process_tables", true)
	v.SetDefault("processing.generate_frontmatter", true)

	v.SetDefault("cleanup.strip_triple_dollar", true)
	v.SetDefault("cleanup.remove_toc", true)
	v.SetDefault("cleanup.strip_heading_markup", true)
	v.SetDefault("cleanup.strip_heading_ids", true)
	v.SetDefault("cleanup.remove_image_attrs", true)
	v.SetDefault("cleanup.fix_image_paths", true)

	v.SetDefault("unicode_fix.enabled", true)

	v.SetDefault("figures.enabled", true)

	v.SetDefault("frontmatter.enabled", true)
	v.SetDefault("frontmatter.extract_from_body", true)
	v.SetDefault("frontmatter.strip_body_title_block", true)
	v.SetDefault("frontmatter.default_author", "")
	v.SetDefault("frontmatter.mdtexpdf", DefaultMdTexPDF())

	v.SetDefault("batch.concurrency", 3)
}

// Validate checks the invariants the pipeline depends on.
func (c *Config) Validate() error {
	if err := validatePair("equations.inline_delimiters", c.Equations.InlineDelimiters); err != nil {
		return err
	}
	if err := validatePair("equations.display_delimiters", c.Equations.DisplayDelimiters); err != nil {
		return err
	}
	// Identical inline and display pairs make the tokenizer ambiguous.
	if c.Equations.InlineDelimiters[0] == c.Equations.DisplayDelimiters[0] &&
		c.Equations.InlineDelimiters[1] == c.Equations.DisplayDelimiters[1] {
		return types.NewAppError(types.ErrConfig,
			"inline and display delimiter pairs must be distinct", nil)
	}
	if c.Equations.WideThreshold <= 0 {
		return types.NewAppError(types.ErrConfig,
			"equations.wide_threshold must be positive", nil)
	}
	if c.Batch.Concurrency <= 0 {
		return types.NewAppError(types.ErrConfig,
			"batch.concurrency must be positive", nil)
	}
	if c.Pandoc.Binary == "" {
		return types.NewAppError(types.ErrConfig, "pandoc.binary must be set", nil)
	}
	return nil
}

func validatePair(key string, pair []string) error {
	if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
		return types.NewAppErrorWithDetails(types.ErrConfig,
			"delimiter pair must be two non-empty strings",
			fmt.Sprintf("%s=%v", key, pair), nil)
	}
	return nil
}
