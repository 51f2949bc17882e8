package localtime

import (
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/xerrors"

	"github.com/fahertym/intercooperative-network/logging"
	"github.com/fahertym/intercooperative-network/util"
)

// CallbackTimer invokes the callback on every interval until the callback
// returns false or errors.
type CallbackTimer struct {
	*logging.Logging
	*util.FunctionDaemon
	name         string
	intervalFunc func() time.Duration
}

func NewCallbackTimer(
	name string,
	callback func() (bool, error),
	defaultInterval time.Duration,
) (*CallbackTimer, error) {
	if defaultInterval < time.Nanosecond {
		return nil, xerrors.Errorf("too narrow interval: %v", defaultInterval)
	}

	ct := &CallbackTimer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.
				Str("module", "callback-timer").
				Str("name", name)
		}),
		name: name,
		intervalFunc: func() time.Duration {
			return defaultInterval
		},
	}
	ct.FunctionDaemon = util.NewFunctionDaemon(ct.callback(callback))

	return ct, nil
}

func (ct *CallbackTimer) SetLogger(l logging.Logger) logging.Logger {
	_ = ct.Logging.SetLogger(l)
	_ = ct.FunctionDaemon.SetLogger(l)

	return ct.Log()
}

func (ct *CallbackTimer) Name() string {
	return ct.name
}

func (ct *CallbackTimer) callback(cb func() (bool, error)) func(chan struct{}) error {
	return func(stopChan chan struct{}) error {
		ticker := time.NewTicker(ct.intervalFunc())
		defer ticker.Stop()

		for {
			select {
			case <-stopChan:
				return nil
			case <-ticker.C:
				switch keep, err := cb(); {
				case err != nil:
					ct.Log().Error().Err(err).Msg("callback failed")
					return err
				case !keep:
					return nil
				}
			}
		}
	}
}
