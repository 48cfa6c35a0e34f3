package identity

import (
	"fmt"
	"time"
	"weak"

	"github.com/goliatone/go-repository-identity/internal/denylist"
	"github.com/goliatone/go-repository-identity/internal/pinring"
	"go.uber.org/zap"
)

// slot is the per-ID record: a weak handle plus the time the ID was first pooled.
type slot struct {
	value        func() Model
	instantiated time.Time
}

// Pool guarantees at most one live instance per ID for one session.
//
// Instances are tracked through weak pointers, so a pooled instance is
// reclaimed once nothing outside the pool references it. The PinCapacity most
// recently registered instances are additionally held strongly.
//
// A Pool is not safe for concurrent use. Give each session its own pool, see
// the session package, or guard every call with your own lock.
type Pool struct {
	cfg         Config
	slots       map[ID]slot
	pins        *pinring.Ring[Model]
	invalidated *denylist.Set[ID]
	logger      *zap.Logger
	observer    Observer
	now         func() time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger. Nil is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithObserver sets the event observer. Nil is ignored.
func WithObserver(o Observer) Option {
	return func(p *Pool) {
		if o != nil {
			p.observer = o
		}
	}
}

// WithClock overrides the clock used for slot timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates an empty pool after validating cfg.
func New(cfg Config, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:         cfg,
		slots:       make(map[ID]slot, 10),
		pins:        pinring.New[Model](cfg.PinCapacity),
		invalidated: denylist.New[ID](),
		logger:      zap.NewNop(),
		observer:    nopObserver{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// NewWithDefaults creates a pool using DefaultConfig.
func NewWithDefaults(opts ...Option) *Pool {
	p, err := New(DefaultConfig(), opts...)
	if err != nil {
		// DefaultConfig is always valid
		panic(err)
	}
	return p
}

// Config returns a copy of the pool configuration.
func (p *Pool) Config() Config {
	return p.cfg
}

// Register stores instance in the pool, or re-pools it.
//
// The instance is moved to the front of the pin ring, evicting the oldest
// pins beyond capacity. If a different live instance is already pooled under
// the same ID the configured ConflictPolicy applies. An instance with an
// invalidated ID is still pinned but never gets a slot.
//
// Since Go methods cannot have type parameters, this is a package-level function.
func Register[T any, PT Entity[T]](p *Pool, instance PT) error {
	if instance == nil {
		return ErrNilInstance
	}
	return p.register(instance, weakHandle[T, PT](instance))
}

func weakHandle[T any, PT Entity[T]](instance PT) func() Model {
	wp := weak.Make((*T)(instance))
	return func() Model {
		if v := wp.Value(); v != nil {
			return PT(v)
		}
		return nil
	}
}

func (p *Pool) register(instance Model, handle func() Model) error {
	id := instance.ModelID()
	invalidated := p.invalidated.Contains(id)

	var current Model
	if !invalidated {
		current, _ = p.Get(id)
	}
	if current != nil && current != instance {
		p.observer.Observe(EventConflict, 1)
		conflict := &IdentityConflictError{ID: id, Existing: current, Incoming: instance}
		if p.cfg.ConflictPolicy == ConflictKeepExisting {
			p.logger.Warn("identity conflict, keeping existing instance",
				zap.String("id", id.Hex()),
				zap.String("existing", fmt.Sprintf("%T", current)),
				zap.String("incoming", fmt.Sprintf("%T", instance)),
			)
			return nil
		}
		return conflict
	}

	if current != nil {
		p.pins.Remove(current)
	}
	if evicted := p.pins.PushFront(instance); evicted > 0 {
		p.logger.Debug("evicted pinned instances", zap.Int("count", evicted))
		p.observer.Observe(EventEvict, evicted)
	}

	if invalidated {
		p.logger.Debug("pinned instance of invalidated id", zap.String("id", id.Hex()))
		return nil
	}
	if current != nil {
		return nil
	}

	p.slots[id] = slot{value: handle, instantiated: p.now()}
	p.observer.Observe(EventRegister, 1)
	return nil
}

// Get returns the live instance pooled under id. It does not sweep dead slots.
func (p *Pool) Get(id ID) (Model, bool) {
	s, ok := p.slots[id]
	if !ok {
		return nil, false
	}
	m := s.value()
	return m, m != nil
}

// Lookup returns the live instance pooled under id if it is a PT.
func Lookup[T any, PT Entity[T]](p *Pool, id ID) (PT, bool) {
	m, ok := p.Get(id)
	if !ok {
		return nil, false
	}
	typed, ok := m.(PT)
	return typed, ok
}

// InstantiatedAt returns when id was first pooled, if its slot still exists.
func (p *Pool) InstantiatedAt(id ID) (time.Time, bool) {
	s, ok := p.slots[id]
	if !ok {
		return time.Time{}, false
	}
	return s.instantiated, true
}

// Invalidate removes id from the pool and prevents it from ever being pooled
// again by this pool. Called after the entity is deleted.
func (p *Pool) Invalidate(id ID) {
	delete(p.slots, id)
	p.invalidated.Mark(id)
	p.observer.Observe(EventInvalidate, 1)
}

// IsInvalidated reports whether id was invalidated.
func (p *Pool) IsInvalidated(id ID) bool {
	return p.invalidated.Contains(id)
}

// IsPooled reports whether a slot exists for the instance's ID. The slot may
// be stale until the next Cleanup.
func (p *Pool) IsPooled(m Model) bool {
	if m == nil {
		return false
	}
	_, ok := p.slots[m.ModelID()]
	return ok
}

// Size sweeps dead slots and returns the number of live ones.
func (p *Pool) Size() int {
	p.Cleanup()
	return len(p.slots)
}

// Cleanup removes every slot whose instance has been reclaimed and returns
// how many were removed. It never runs on its own.
func (p *Pool) Cleanup() int {
	removed := 0
	for id, s := range p.slots {
		if s.value() == nil {
			delete(p.slots, id)
			removed++
		}
	}

	if removed > 0 {
		p.logger.Debug("removed reclaimed slots", zap.Int("count", removed))
		p.observer.Observe(EventCleanup, removed)
	}
	return removed
}

// PinCapacity returns the configured pin ring capacity.
func (p *Pool) PinCapacity() int {
	return p.pins.Capacity()
}

// SetPinCapacity resizes the pin ring, evicting the oldest pins if needed.
func (p *Pool) SetPinCapacity(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: pin capacity must be non-negative, got %d", ErrInvalidConfig, n)
	}
	p.cfg.PinCapacity = n
	if evicted := p.pins.SetCapacity(n); evicted > 0 {
		p.observer.Observe(EventEvict, evicted)
	}
	return nil
}

// Pinned returns the number of instances currently held by the pin ring.
func (p *Pool) Pinned() int {
	return p.pins.Len()
}
