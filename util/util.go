package util

import "time"

// NewImmediateTicker works like time.NewTicker, except that it fires
// once immediately instead of waiting for the first interval to elapse.
func NewImmediateTicker(d time.Duration) *time.Ticker {
	t := time.NewTicker(d)
	oc := t.C
	nc := make(chan time.Time, 1)
	go func() {
		nc <- time.Now()
		for tm := range oc {
			nc <- tm
		}
	}()
	t.C = nc
	return t
}
