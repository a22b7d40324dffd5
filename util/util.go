package util

import (
	"log"
	"sync/atomic"
)

var debug uint64

// SetDebug sets the highest DPrintf level that is printed. Level 0 (the
// default) silences every trace.
func SetDebug(level uint64) {
	atomic.StoreUint64(&debug, level)
}

func Debug() uint64 {
	return atomic.LoadUint64(&debug)
}

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug() {
		log.Printf(format, a...)
	}
}

func RoundUp(n uint64, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

// SumOverflows reports whether n+m wraps around uint64.
func SumOverflows(n uint64, m uint64) bool {
	return n+m < n
}
