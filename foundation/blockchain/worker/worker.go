// Package worker runs the three long-lived goroutine pools that drive a
// node: the miner's proof-of-work search loop, the network worker pool that
// processes gossip, and the transaction generator. All three operate on the
// chain, orphan pool, and mempool behind their own locks; this package
// never holds more than one of those locks at a time, since every access is
// a single call that takes and releases that structure's own lock.
package worker

// EventHandler is called to report what a worker is doing, mirroring the
// structured logging callback used elsewhere in this codebase.
type EventHandler func(format string, args ...any)

func (h EventHandler) fire(format string, args ...any) {
	if h != nil {
		h(format, args...)
	}
}
