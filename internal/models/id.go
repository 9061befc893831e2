package models

import (
	"strconv"
	"sync/atomic"
	"time"
)

var lastID atomic.Int64

// NewID returns a millisecond-timestamp record ID, bumped past the previous
// one so IDs handed out by this process never collide even within the same
// millisecond.
func NewID() string {
	id := time.Now().UnixMilli()
	for {
		prev := lastID.Load()
		if id <= prev {
			id = prev + 1
		}
		if lastID.CompareAndSwap(prev, id) {
			return strconv.FormatInt(id, 10)
		}
	}
}
