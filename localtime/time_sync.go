package localtime

import (
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/logging"
)

var (
	allowedTimeSyncOffset    = time.Millisecond * 500
	minTimeSyncCheckInterval = time.Second * 5
	timeSyncer               *TimeSyncer
)

// TimeSyncer keeps the local clock offset tuned against a ntp server.
type TimeSyncer struct {
	sync.RWMutex
	*logging.Logging
	server   string
	offset   time.Duration
	stopChan chan struct{}
	interval time.Duration
}

func NewTimeSyncer(server string, checkInterval time.Duration) (*TimeSyncer, error) {
	if _, err := ntp.Query(server); err != nil {
		return nil, err
	}

	ts := &TimeSyncer{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.
				Str("module", "time-syncer").
				Str("server", server).
				Dur("interval", checkInterval)
		}),
		server:   server,
		interval: checkInterval,
		stopChan: make(chan struct{}),
	}

	if checkInterval < minTimeSyncCheckInterval {
		ts.Log().Warn().
			Dur("check_interval", checkInterval).
			Dur("min_check_interval", minTimeSyncCheckInterval).
			Msg("check interval too short")
	}

	return ts, nil
}

func (ts *TimeSyncer) Start() error {
	go ts.schedule()

	ts.Log().Debug().Msg("started")

	return nil
}

func (ts *TimeSyncer) Stop() error {
	ts.Lock()
	defer ts.Unlock()

	if ts.stopChan != nil {
		ts.stopChan <- struct{}{}
		close(ts.stopChan)
		ts.stopChan = nil
	}

	return nil
}

func (ts *TimeSyncer) schedule() {
	ticker := time.NewTicker(ts.interval)

end:
	for {
		select {
		case <-ts.stopChan:
			ticker.Stop()
			ts.Log().Debug().Msg("stopped")
			break end
		case <-ticker.C:
			ts.check()
		}
	}
}

func (ts *TimeSyncer) Offset() time.Duration {
	ts.RLock()
	defer ts.RUnlock()

	return ts.offset
}

func (ts *TimeSyncer) check() {
	ts.Lock()
	defer ts.Unlock()

	response, err := ntp.Query(ts.server)
	if err != nil {
		ts.Log().Error().Err(err).Msg("failed to query ntp server")
		return
	}

	if err := response.Validate(); err != nil {
		ts.Log().Error().Err(err).Msg("invalid ntp response")
		return
	}

	if ts.offset < 1 {
		ts.offset = response.ClockOffset
		return
	}

	switch diff := ts.offset - response.ClockOffset; {
	case diff == 0:
		return
	case diff > 0:
		if diff < allowedTimeSyncOffset {
			return
		}
	case diff < 0:
		if diff > allowedTimeSyncOffset*-1 {
			return
		}
	}

	ts.offset = response.ClockOffset
}

// SetTimeSyncer sets the global TimeSyncer used by Now.
func SetTimeSyncer(syncer *TimeSyncer) {
	timeSyncer = syncer
}

// Now returns the local time tuned with the TimeSyncer offset.
func Now() time.Time {
	if timeSyncer == nil {
		return time.Now()
	}

	return time.Now().Add(timeSyncer.Offset())
}
