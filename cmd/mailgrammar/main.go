// Command mailgrammar decodes mail header fields and SMTP command lines and prints the decoded values.
//
// Header field values are read from the arguments, or from standard input when there are none:
//
//	mailgrammar -field from '=?utf-8?q?Andr=C3=A9?= <andre@example.org>'
//
// SMTP command lines are read from standard input, one per line:
//
//	printf 'MAIL FROM:<bob@example.org> RET=HDRS\r\n' | mailgrammar -smtp
//
// The header fields of every message of an mbox file are decoded with -mbox.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ProtonMail/mailgrammar/limits"
	"github.com/ProtonMail/mailgrammar/reporter"
	"github.com/ProtonMail/mailgrammar/rfcparser"
	"github.com/bradenaw/juniper/xslices"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func main() {
	exitCode := 0

	defer func() { os.Exit(exitCode) }()

	if level, err := logrus.ParseLevel(os.Getenv("MAILGRAMMAR_LOG_LEVEL")); err == nil {
		logrus.SetLevel(level)
	}

	var (
		field           = flag.String("field", "", "decode the arguments as this header field: "+strings.Join(fieldNames(), ", "))
		mboxPath        = flag.String("mbox", "", "decode the header fields of every message of this mbox file")
		smtp            = flag.Bool("smtp", false, "decode SMTP command lines read from standard input")
		legacy          = flag.Bool("legacy", false, "reject 8-bit octets in SMTP and replace them in header text")
		strictParams    = flag.Bool("strict-params", false, "keep encoded words inside quoted MIME parameter values")
		terse           = flag.Bool("terse", false, "report errors without detail")
		charsetFallback = flag.Bool("charset-fallback", false, "keep encoded words with an unknown charset literally")
		rfc5321Limits   = flag.Bool("rfc5321-limits", false, "enforce the RFC 5321 path length limits")
		profileMode     = flag.String("profile", "", "write a cpu or mem profile")
		profileDir      = flag.String("profile-dir", ".", "directory the profile is written to")
	)

	flag.Parse()

	opts := []rfcparser.Option{rfcparser.WithReporter(logReporter{})}

	if *legacy {
		opts = append(opts, rfcparser.WithBehaviour(rfcparser.Legacy))
	}

	if *strictParams {
		opts = append(opts, rfcparser.WithParamQuoting(rfcparser.Strict))
	}

	if *terse {
		opts = append(opts, rfcparser.WithDiagnostics(rfcparser.Terse))
	}

	if *charsetFallback {
		opts = append(opts, rfcparser.WithCharsetFallback())
	}

	if *rfc5321Limits {
		opts = append(opts, rfcparser.WithLimits(limits.RFC5321Limits()))
	}

	var decode func() error

	switch {
	case *mboxPath != "":
		decode = func() error { return decodeMBoxFile(os.Stdout, *mboxPath, opts) }

	case *smtp:
		decode = func() error { return decodeCommands(os.Stdout, os.Stdin, opts) }

	case *field != "":
		decode = func() error { return decodeArgs(os.Stdout, os.Stdin, *field, flag.Args(), opts) }

	default:
		flag.Usage()
		os.Exit(2)
	}

	if *profileMode != "" {
		p := startProfile(*profileMode, *profileDir)
		defer p.Stop()
	}

	if err := decode(); err != nil {
		logrus.WithError(err).Error("Failed to decode input")
		exitCode = 1
	}
}

func startProfile(mode, dir string) interface{ Stop() } {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath(dir), profile.NoShutdownHook)

	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath(dir), profile.NoShutdownHook)

	default:
		logrus.Fatalf("Unknown profile mode %q", mode)
		return nil
	}
}

func fieldNames() []string {
	names := maps.Keys(decoders)

	slices.Sort(names)

	return names
}

// logReporter forwards the recovered problems reported by the decoders to the log.
type logReporter struct{}

func (logReporter) ReportMessage(message string) error {
	logrus.Warn(message)
	return nil
}

func (logReporter) ReportMessageWithContext(message string, context reporter.Context) error {
	logrus.WithFields(logrus.Fields(context)).Warn(message)
	return nil
}

func joinStrings[T fmt.Stringer](values []T, sep string) string {
	return strings.Join(xslices.Map(values, func(v T) string { return v.String() }), sep)
}
