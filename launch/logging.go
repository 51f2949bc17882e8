package launch

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/util"
)

// SetupLogging builds the root logger from the design; every process
// run is stamped with a fresh ulid so interleaved logs sort apart.
func SetupLogging(design LoggingDesign) logging.Logger {
	level := zerolog.DebugLevel
	if l, err := zerolog.ParseLevel(strings.ToLower(design.Level)); err == nil && len(design.Level) > 0 {
		level = l
	}

	var out io.Writer = os.Stderr
	if design.Format == "terminal" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	}

	z := zerolog.New(out).With().
		Timestamp().
		Str("run", util.ULID().String()).
		Logger().Level(level)

	return logging.NewLogger(&z, level <= zerolog.DebugLevel)
}
