package rfcparser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ProtonMail/mailgrammar/limits"
	"github.com/ProtonMail/mailgrammar/reporter"
)

// Diagnostics selects how much detail failures carry.
type Diagnostics int

const (
	Verbose Diagnostics = iota
	Terse
)

// ParamQuoting selects how quoted MIME parameter values are treated.
type ParamQuoting int

const (
	// Lenient decodes RFC 2047 encoded words found inside quoted parameter values.
	Lenient ParamQuoting = iota
	// Strict keeps quoted parameter values verbatim as RFC 2231 requires.
	Strict
)

// Behaviour selects how 8-bit octets are interpreted.
type Behaviour int

const (
	// Intl treats 8-bit octets as UTF-8 (RFC 6531, RFC 6532).
	Intl Behaviour = iota
	// Legacy rejects 8-bit octets in SMTP atoms and replaces them with U+FFFD in message text.
	Legacy
)

// Config is the resolved set of options a parse runs with. It is never modified once built.
type Config struct {
	Diagnostics     Diagnostics
	ParamQuoting    ParamQuoting
	Behaviour       Behaviour
	CharsetFallback bool
	Limits          limits.Grammar
	Reporter        reporter.Reporter
}

// Option represents a type that can be used to configure a parse.
type Option interface {
	config(cfg *Config)
}

// NewConfig resolves the given options on top of the defaults.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Diagnostics:  Verbose,
		ParamQuoting: Lenient,
		Behaviour:    Intl,
		Limits:       limits.DefaultLimits(),
		Reporter:     &reporter.NullReporter{},
	}

	for _, opt := range opts {
		opt.config(cfg)
	}

	return cfg
}

// Diagnose applies the diagnostics level to an error about to leave an entry point.
func (cfg *Config) Diagnose(err error) error {
	if err == nil || cfg.Diagnostics == Verbose {
		return err
	}

	var perr *Error
	if !errors.As(err, &perr) {
		return err
	}

	return &Error{
		Token:   perr.Token,
		Kind:    perr.Kind,
		Message: perr.Kind.String(),
		Err:     perr.Err,
	}
}

// Text converts raw header bytes to a string. In Intl mode 8-bit octets are read as UTF-8, in Legacy mode every
// 8-bit octet is replaced. Invalid sequences become U+FFFD in both modes.
func (cfg *Config) Text(b []byte) string {
	if cfg.Behaviour == Intl {
		if utf8.Valid(b) {
			return string(b)
		}

		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}

	var out strings.Builder

	out.Grow(len(b))

	for _, v := range b {
		if v < utf8.RuneSelf {
			out.WriteByte(v)
		} else {
			out.WriteRune(utf8.RuneError)
		}
	}

	return out.String()
}

// Report forwards a recovered-input event to the configured reporter.
func (cfg *Config) Report(message string, context reporter.Context) {
	reporter.MessageWithContext(cfg.Reporter, message, context)
}

// WithDiagnostics selects verbose (default) or terse failure messages.
func WithDiagnostics(diagnostics Diagnostics) Option {
	return &withDiagnostics{diagnostics: diagnostics}
}

type withDiagnostics struct {
	diagnostics Diagnostics
}

func (opt withDiagnostics) config(cfg *Config) {
	cfg.Diagnostics = opt.diagnostics
}

// WithParamQuoting selects lenient (default) or strict handling of quoted MIME parameter values.
func WithParamQuoting(quoting ParamQuoting) Option {
	return &withParamQuoting{quoting: quoting}
}

type withParamQuoting struct {
	quoting ParamQuoting
}

func (opt withParamQuoting) config(cfg *Config) {
	cfg.ParamQuoting = opt.quoting
}

// WithBehaviour selects how 8-bit octets are handled.
func WithBehaviour(behaviour Behaviour) Option {
	return &withBehaviour{behaviour: behaviour}
}

type withBehaviour struct {
	behaviour Behaviour
}

func (opt withBehaviour) config(cfg *Config) {
	cfg.Behaviour = opt.behaviour
}

// WithCharsetFallback keeps encoded words with an unknown charset literally instead of failing.
func WithCharsetFallback() Option {
	return &withCharsetFallback{}
}

type withCharsetFallback struct{}

func (withCharsetFallback) config(cfg *Config) {
	cfg.CharsetFallback = true
}

// WithLimits replaces the default grammar limits.
func WithLimits(limits limits.Grammar) Option {
	return &withLimits{limits: limits}
}

type withLimits struct {
	limits limits.Grammar
}

func (opt withLimits) config(cfg *Config) {
	cfg.Limits = opt.limits
}

// WithReporter sets the reporter notified about recovered malformed input.
func WithReporter(r reporter.Reporter) Option {
	return &withReporter{reporter: r}
}

type withReporter struct {
	reporter reporter.Reporter
}

func (opt withReporter) config(cfg *Config) {
	cfg.Reporter = opt.reporter
}
