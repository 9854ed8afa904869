package main

import "time"

// msToDuration converts a DOMHighResTimeStamp difference to a Duration.
func msToDuration(ms float64) time.Duration {
	if ms < 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}
