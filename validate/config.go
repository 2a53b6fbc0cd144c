// Package validate checks entity fields before writes. Validators return
// verdict texts instead of errors: the sentinel Pass on success, or a
// "Failed validation: ..." message naming the first violated rule. They
// never panic past their own boundary.
package validate

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pass is the verdict returned by every validator on success.
const Pass = "pass"

// Config names the validation rules that have drifted across revisions of
// this model, so one definition governs every entity. Load it from YAML to
// pin the variant in force, or use DefaultConfig.
type Config struct {
	// NamePunctuation is the punctuation allowed in name fields beyond
	// letters, digits, and space.
	NamePunctuation string `yaml:"namePunctuation"`

	// LongNameMin/Max bound Widget.name.
	LongNameMin int `yaml:"longNameMin"`
	LongNameMax int `yaml:"longNameMax"`

	// ShortNameMin/Max bound attribute, category, and option names.
	ShortNameMin int `yaml:"shortNameMin"`
	ShortNameMax int `yaml:"shortNameMax"`

	// UsernamePattern is the full username regexp.
	UsernamePattern string `yaml:"usernamePattern"`

	// IDMaxLength bounds opaque (non-UUID) identifiers.
	IDMaxLength int `yaml:"idMaxLength"`
}

// DefaultConfig returns the rule set currently in force.
func DefaultConfig() Config {
	return Config{
		NamePunctuation: "~`!@#$%^&*()_-+=|:',?/",
		LongNameMin:     2,
		LongNameMax:     256,
		ShortNameMin:    2,
		ShortNameMax:    48,
		UsernamePattern: "^[a-z0-9_-]{3,15}$",
		IDMaxLength:     64,
	}
}

// LoadConfig reads a YAML config file, filling unset values with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read validation config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse validation config: %w", err)
	}
	cfg.validate()
	return cfg, nil
}

// validate clamps config values to usable bounds.
func (c *Config) validate() {
	def := DefaultConfig()
	if c.NamePunctuation == "" {
		c.NamePunctuation = def.NamePunctuation
	}
	if c.LongNameMin < 1 {
		c.LongNameMin = def.LongNameMin
	}
	if c.LongNameMax < c.LongNameMin {
		c.LongNameMax = def.LongNameMax
	}
	if c.ShortNameMin < 1 {
		c.ShortNameMin = def.ShortNameMin
	}
	if c.ShortNameMax < c.ShortNameMin {
		c.ShortNameMax = def.ShortNameMax
	}
	if c.UsernamePattern == "" {
		c.UsernamePattern = def.UsernamePattern
	}
	if c.IDMaxLength < 1 {
		c.IDMaxLength = def.IDMaxLength
	}
}

// Ruleset is a Config compiled into matchers, built once and shared by all
// validators.
type Ruleset struct {
	cfg       Config
	longName  *regexp.Regexp
	shortName *regexp.Regexp
	username  *regexp.Regexp
}

// NewRuleset compiles a Config.
func NewRuleset(cfg Config) (*Ruleset, error) {
	cfg.validate()

	longName, err := regexp.Compile(namePattern(cfg.NamePunctuation, cfg.LongNameMin, cfg.LongNameMax))
	if err != nil {
		return nil, fmt.Errorf("compile long name rule: %w", err)
	}
	shortName, err := regexp.Compile(namePattern(cfg.NamePunctuation, cfg.ShortNameMin, cfg.ShortNameMax))
	if err != nil {
		return nil, fmt.Errorf("compile short name rule: %w", err)
	}
	username, err := regexp.Compile(cfg.UsernamePattern)
	if err != nil {
		return nil, fmt.Errorf("compile username rule: %w", err)
	}

	return &Ruleset{
		cfg:       cfg,
		longName:  longName,
		shortName: shortName,
		username:  username,
	}, nil
}

// DefaultRuleset compiles DefaultConfig. The defaults always compile.
func DefaultRuleset() *Ruleset {
	r, err := NewRuleset(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return r
}

// namePattern builds the anchored character-class pattern for name fields.
func namePattern(punctuation string, min, max int) string {
	return fmt.Sprintf("^[A-Za-z0-9 %s]{%d,%d}$", escapeClass(punctuation), min, max)
}

// escapeClass escapes characters that are special inside a regexp
// character class.
func escapeClass(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\', ']', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
