package util

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type testLockedItem struct {
	suite.Suite
}

func (t *testLockedItem) TestDefault() {
	li := NewLockedItem(0.66)
	t.Equal(0.66, li.Value().(float64))
}

func (t *testLockedItem) TestSet() {
	li := NewLockedItem("rollback")
	t.Equal(li, li.Set("finalize"))
	t.Equal("finalize", li.Value().(string))
}

func (t *testLockedItem) TestConcurrentSet() {
	li := NewLockedItem(0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				li.Set(n)
				_ = li.Value()
			}
		}(i)
	}
	wg.Wait()

	v := li.Value().(int)
	t.True(v >= 0 && v < 10)
}

func TestLockedItem(t *testing.T) {
	suite.Run(t, new(testLockedItem))
}
