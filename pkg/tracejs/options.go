package tracejs

import (
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// config holds ScriptEngine construction options (§6), matching the
// teacher's functional-options idiom (internal/lexer.LexerOption,
// internal/bytecode.CompilerOption): a private struct only Option
// functions may mutate.
type config struct {
	sourceName string
	strict     bool
	out        io.Writer
}

func defaultConfig() config {
	return config{sourceName: "<script>", strict: false, out: io.Discard}
}

// Option configures an Engine at construction time.
type Option func(*config)

// WithSourceName sets the name compile errors and stack frames report
// (the teacher's lexer/parser carry a similar sourceName for the same
// reason).
func WithSourceName(name string) Option {
	return func(c *config) { c.sourceName = name }
}

// WithStrictMode compiles every top-level Execute/Evaluate call as
// strict-mode code by default (§7 "strict mode").
func WithStrictMode(strict bool) Option {
	return func(c *config) { c.strict = strict }
}

// WithOutput directs `print`-style output to w instead of discarding
// it, mirroring the teacher's bytecode.NewVMWithOutput (used by the
// CLI's --trace flag).
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.out = w }
}

// WithStdout is a convenience for WithOutput(os.Stdout), the CLI's
// default when tracing is requested.
func WithStdout() Option {
	return WithOutput(os.Stdout)
}

// fileOptions is the YAML shape OptionsFromYAML decodes (§6: embedders
// that keep engine config out-of-process).
type fileOptions struct {
	SourceName string `yaml:"sourceName"`
	Strict     bool   `yaml:"strict"`
}

// OptionsFromYAML parses a YAML options document into Option values,
// for embedders that configure an Engine from a config file rather
// than Go call sites. Unknown/absent keys fall back to defaultConfig's
// values.
func OptionsFromYAML(doc []byte) ([]Option, error) {
	var fo fileOptions
	if err := yaml.Unmarshal(doc, &fo); err != nil {
		return nil, err
	}
	var opts []Option
	if fo.SourceName != "" {
		opts = append(opts, WithSourceName(fo.SourceName))
	}
	opts = append(opts, WithStrictMode(fo.Strict))
	return opts, nil
}
