package util

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type testFunctionDaemon struct {
	suite.Suite
}

func (t *testFunctionDaemon) newDaemon() *FunctionDaemon {
	return NewFunctionDaemon(func(stopChan chan struct{}) error {
		<-stopChan

		return nil
	})
}

func (t *testFunctionDaemon) TestStartStop() {
	dm := t.newDaemon()
	t.False(dm.IsStarted())
	t.True(dm.IsStopped())

	t.NoError(dm.Start())
	t.True(dm.IsStarted())
	t.False(dm.IsStopped())

	t.NoError(dm.Stop())
	t.True(dm.IsStopped())
}

func (t *testFunctionDaemon) TestStartTwice() {
	dm := t.newDaemon()
	t.NoError(dm.Start())

	err := dm.Start()
	t.Error(err)
	t.True(DaemonAlreadyStartedError.Is(err))

	t.NoError(dm.Stop())
}

func (t *testFunctionDaemon) TestStopTwice() {
	dm := t.newDaemon()
	t.NoError(dm.Start())
	t.NoError(dm.Stop())

	err := dm.Stop()
	t.Error(err)
	t.True(DaemonAlreadyStoppedError.Is(err))
}

func (t *testFunctionDaemon) TestRestart() {
	dm := t.newDaemon()

	for i := 0; i < 3; i++ {
		t.NoError(dm.Start())
		t.NoError(dm.Stop())
	}
}

func TestFunctionDaemon(t *testing.T) {
	suite.Run(t, new(testFunctionDaemon))
}
