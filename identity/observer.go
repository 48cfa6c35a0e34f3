package identity

// Event names a pool activity reported to an Observer.
type Event string

const (
	EventHit        Event = "hit"
	EventMiss       Event = "miss"
	EventDecode     Event = "decode"
	EventRegister   Event = "register"
	EventEvict      Event = "evict"
	EventInvalidate Event = "invalidate"
	EventCleanup    Event = "cleanup"
	EventConflict   Event = "conflict"
)

// Observer receives pool events. n is the number of affected entries.
// Observers are called synchronously from pool operations.
type Observer interface {
	Observe(event Event, n int)
}

type nopObserver struct{}

func (nopObserver) Observe(Event, int) {}
