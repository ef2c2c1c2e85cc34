package smartgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/smartgen/analysis"
	"github.com/broady/smartgen/csharp"
)

// Config holds the configuration for generation.
//
// A Config is built in layers: [DefaultConfig], then an optional TOML file
// ([LoadConfigFile]), then key=value overrides ([Config.ApplyOptions]). The
// result is checked with [Config.Validate] before use.
type Config struct {
	// Parallelism bounds the number of declarations processed at once.
	// Zero means one per CPU.
	Parallelism int `toml:"parallelism" schema:"parallelism" validate:"gte=0,lte=256"`

	// HintSuffix is appended to every generated file name.
	// Default: ".SmartEnum.g.cs"
	HintSuffix string `toml:"hint_suffix" schema:"hint_suffix" validate:"required,startswith=.,excludesall=/\\"`

	// EmitHeader writes "// <auto-generated/>" as the first line of every
	// fragment. Default: true
	EmitHeader bool `toml:"emit_header" schema:"emit_header"`

	// IndentSize is the number of spaces per nesting level. Default: 4
	IndentSize int `toml:"indent_size" schema:"indent_size" validate:"gte=1,lte=8"`

	// LineEnding is "lf" (default) or "crlf".
	LineEnding string `toml:"line_ending" schema:"line_ending" validate:"oneof=lf crlf"`

	// TypeMarker is the metadata name of the attribute marking a smart enum.
	TypeMarker string `toml:"type_marker" schema:"type_marker" validate:"required,csharpname"`

	// MemberMarker is the metadata name of the attribute marking an instance.
	MemberMarker string `toml:"member_marker" schema:"member_marker" validate:"required,csharpname"`

	// EnumBase is the metadata name of the plain enumeration base.
	// e.g. "Ardalis.SmartEnum.SmartEnum`2"
	EnumBase string `toml:"enum_base" schema:"enum_base" validate:"required,csharpname"`

	// FlagEnumBase is the metadata name of the flag-style enumeration base.
	FlagEnumBase string `toml:"flag_enum_base" schema:"flag_enum_base" validate:"required,csharpname"`

	// AccessorName is the generated static method returning all instances.
	// Default: "GetAllMembers"
	AccessorName string `toml:"accessor_name" schema:"accessor_name" validate:"required,csharpident"`

	// BackingFieldName is the private field holding all instances.
	// Default: "_allMembers"
	BackingFieldName string `toml:"backing_field_name" schema:"backing_field_name" validate:"required,csharpident"`
}

// DefaultConfig returns the configuration matching the Ardalis.SmartEnum
// library.
func DefaultConfig() Config {
	names := analysis.DefaultNames()
	opts := csharp.DefaultOptions()
	return Config{
		HintSuffix:       opts.HintSuffix,
		EmitHeader:       opts.EmitHeader,
		IndentSize:       opts.Print.IndentSize,
		LineEnding:       opts.Print.LineEnding,
		TypeMarker:       names.TypeMarker,
		MemberMarker:     names.MemberMarker,
		EnumBase:         names.EnumBase,
		FlagEnumBase:     names.FlagEnumBase,
		AccessorName:     opts.AccessorName,
		BackingFieldName: opts.BackingFieldName,
	}
}

// LoadConfigFile reads a TOML file on top of the defaults.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, Errorf(CodeInvalidConfig, "%s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, NewError(CodeInvalidConfig, fmt.Sprintf("%s: unknown keys: %s", path, strings.Join(keys, ", "))).
			WithDetail("keys", keys)
	}
	return cfg, nil
}

var optionDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// ApplyOptions overrides fields from "key=value" strings, keys being the
// snake_case names used in the TOML file. A key given twice keeps the last
// value.
func (c *Config) ApplyOptions(options []string) error {
	values := make(map[string][]string, len(options))
	for _, opt := range options {
		key, value, ok := strings.Cut(opt, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return NewError(CodeInvalidConfig, fmt.Sprintf("option %q is not key=value", opt))
		}
		values[key] = []string{value}
	}
	if len(values) == 0 {
		return nil
	}
	if err := optionDecoder.Decode(c, values); err != nil {
		return Errorf(CodeInvalidConfig, "options: %w", err)
	}
	return nil
}

var (
	metadataName = regexp.MustCompile("^[A-Za-z_][A-Za-z0-9_]*(\\.[A-Za-z_][A-Za-z0-9_]*)*(`[0-9]+)?$")
	identifier   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	configValidator = func() *validator.Validate {
		v := validator.New()
		_ = v.RegisterValidation("csharpname", func(fl validator.FieldLevel) bool {
			return metadataName.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("csharpident", func(fl validator.FieldLevel) bool {
			return identifier.MatchString(fl.Field().String())
		})
		return v
	}()
)

// Validate checks every field. The error is an *Error with code
// invalid_config and one detail per failing field.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return wrapValidation(CodeInvalidConfig, "config", err)
	}
	return nil
}

func (c Config) names() analysis.Names {
	return analysis.Names{
		TypeMarker:   c.TypeMarker,
		MemberMarker: c.MemberMarker,
		EnumBase:     c.EnumBase,
		FlagEnumBase: c.FlagEnumBase,
	}
}

func (c Config) emitterOptions() csharp.Options {
	return csharp.Options{
		HintSuffix:       c.HintSuffix,
		EmitHeader:       c.EmitHeader,
		AccessorName:     c.AccessorName,
		BackingFieldName: c.BackingFieldName,
		Print:            csharp.PrintOptions{IndentSize: c.IndentSize, LineEnding: c.LineEnding},
	}
}
