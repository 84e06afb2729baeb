package fetch

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// restyLogger routes resty's own messages into zerolog so nothing is printed
// over the interactive prompts.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	log.Error().Str("component", "resty").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	log.Warn().Str("component", "resty").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	log.Debug().Str("component", "resty").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
