package util

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/fahertym/intercooperative-network/logging"
)

var (
	DaemonAlreadyStartedError = NewError("daemon already started")
	DaemonAlreadyStoppedError = NewError("daemon already stopped")
)

type Daemon interface {
	Start() error
	Stop() error
	IsStarted() bool
	IsStopped() bool
}

// FunctionDaemon runs one function as a Daemon; the function receives a stop
// channel and is expected to return when it closes.
type FunctionDaemon struct {
	sync.RWMutex
	*logging.Logging
	fn           func(chan struct{}) error
	stoppingChan chan struct{}
	stopChan     chan struct{}
	stoppingWait *sync.WaitGroup
}

func NewFunctionDaemon(fn func(chan struct{}) error) *FunctionDaemon {
	return &FunctionDaemon{
		Logging: logging.NewLogging(func(c zerolog.Context) zerolog.Context {
			return c.Str("module", "function-daemon")
		}),
		fn:       fn,
		stopChan: make(chan struct{}),
	}
}

func (dm *FunctionDaemon) IsStarted() bool {
	dm.RLock()
	defer dm.RUnlock()

	return dm.stoppingChan != nil
}

func (dm *FunctionDaemon) IsStopped() bool {
	dm.RLock()
	defer dm.RUnlock()

	return dm.stoppingChan == nil
}

func (dm *FunctionDaemon) Start() error {
	if dm.IsStarted() {
		return DaemonAlreadyStartedError.Call()
	}

	dm.Lock()
	dm.stopChan = make(chan struct{})
	dm.stoppingChan = make(chan struct{}, 2)

	dm.stoppingWait = &sync.WaitGroup{}
	dm.stoppingWait.Add(1)
	dm.Unlock()

	go dm.kill()

	go func() {
		if err := dm.fn(dm.stopChan); err != nil {
			dm.Log().Error().Err(err).Msg("daemon function returned error")
		}
		dm.stoppingChan <- struct{}{}
	}()

	dm.Log().Debug().Msg("started")

	return nil
}

func (dm *FunctionDaemon) kill() {
	<-dm.stoppingChan
	dm.stoppingWait.Done()
}

func (dm *FunctionDaemon) Stop() error {
	if dm.IsStopped() {
		return DaemonAlreadyStoppedError.Call()
	}

	dm.stopChan <- struct{}{}
	dm.stoppingWait.Wait()

	dm.Lock()
	dm.stopChan = nil
	dm.stoppingChan = nil
	dm.stoppingWait = nil
	dm.Unlock()

	dm.Log().Debug().Msg("stopped")

	return nil
}
