package util

import "sync"

// LockedItem guards one mutable setting behind a RWMutex; the policy
// objects hold one per tunable so a value can be re-set while its owner
// runs.
type LockedItem struct {
	sync.RWMutex
	value interface{}
}

func NewLockedItem(defaultValue interface{}) *LockedItem {
	return &LockedItem{value: defaultValue}
}

func (li *LockedItem) Value() interface{} {
	li.RLock()
	defer li.RUnlock()

	return li.value
}

// Set replaces the held value and returns the item for chaining.
func (li *LockedItem) Set(value interface{}) *LockedItem {
	li.Lock()
	defer li.Unlock()

	li.value = value

	return li
}
