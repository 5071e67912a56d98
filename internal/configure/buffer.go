package configure

import (
	"log/slog"
	"weak"
)

// Options configures a Buffer.
type Options struct {
	// LockFactory builds locks for ObtainLock. Defaults to a plain
	// LockHandle.
	LockFactory LockFactory
	Logger      *slog.Logger
	Policy      InvariantPolicy
}

// Buffer merges configure requests for one window and dispatches them
// through the async port when no lock suppresses it, or immediately when
// the change cannot wait. It is not safe for concurrent use; all calls are
// expected from the event loop goroutine.
type Buffer struct {
	async   AsyncServerWindow
	sync    SyncServerWindow
	newLock LockFactory
	logger  *slog.Logger
	policy  InvariantPolicy

	client  PendingChangeSet
	wrapper PendingChangeSet
	frame   PendingChangeSet

	lockCount int
	locks     []weak.Pointer[LockHandle]

	// Set while a flush runs. Locks obtained meanwhile wait in deferred
	// until the re-arm loop is done.
	flushing bool
	deferred []weak.Pointer[LockHandle]

	dispatches int
}

var _ Tracker = (*Buffer)(nil)

// NewBuffer creates a buffer for the window behind async and sync.
// The buffer does not own the ports.
func NewBuffer(async AsyncServerWindow, sync SyncServerWindow, opts Options) *Buffer {
	newLock := opts.LockFactory
	if newLock == nil {
		newLock = defaultLockFactory
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Buffer{
		async:   async,
		sync:    sync,
		newLock: newLock,
		logger:  logger,
		policy:  opts.Policy,
	}
}

// PushClientRequest merges changes into the pending client request.
func (b *Buffer) PushClientRequest(changes Changes, mask Mask) {
	b.client.Merge(changes, mask)
	b.dispatchConfigure(false)
}

// PushWrapperRequest merges changes into the pending wrapper request.
func (b *Buffer) PushWrapperRequest(changes Changes, mask Mask) {
	b.wrapper.Merge(changes, mask)
	b.dispatchConfigure(false)
}

// PushFrameRequest merges changes into the pending frame request.
func (b *Buffer) PushFrameRequest(changes Changes, mask Mask) {
	b.frame.Merge(changes, mask)
	b.dispatchConfigure(false)
}

// Freeze adds one suppression. Callers normally go through a LockHandle.
func (b *Buffer) Freeze() {
	if b.lockCount+1 > b.tracked() {
		b.violate("freeze", ErrLockOverflow)
		return
	}
	b.lockCount++
}

// Release drops one suppression and dispatches if nothing else holds the
// buffer.
func (b *Buffer) Release() {
	if b.lockCount == 0 {
		b.violate("release", ErrUnbalancedRelease)
		return
	}
	b.lockCount--
	b.dispatchConfigure(false)
}

// ObtainLock returns a new armed lock. Pushes made while it is armed are
// held back until it is released or closed.
func (b *Buffer) ObtainLock() Lock {
	l := b.newLock(b)
	if l == nil || l.handle() == nil {
		panic("configure: lock factory returned nil")
	}
	h := l.handle()
	h.owner = l
	if b.flushing {
		b.deferred = append(b.deferred, weak.Make(h))
	} else {
		b.locks = append(b.locks, weak.Make(h))
	}
	l.Lock()
	return l
}

// UntrackLock forgets l without touching the freeze count. The lock is
// responsible for balancing its own freeze.
func (b *Buffer) UntrackLock(l *LockHandle) {
	wp := weak.Make(l)
	b.locks = removeLock(b.locks, wp)
	b.deferred = removeLock(b.deferred, wp)
}

// QueryAttributes flushes everything pending, then reads client attributes.
func (b *Buffer) QueryAttributes(attrib *Attributes) bool {
	b.dispatchConfigure(true)
	return b.sync.QueryAttributes(attrib)
}

// QueryFrameAttributes flushes everything pending, then reads frame attributes.
func (b *Buffer) QueryFrameAttributes(attrib *Attributes) bool {
	b.dispatchConfigure(true)
	return b.sync.QueryFrameAttributes(attrib)
}

// Flush sends all pending changes regardless of locks. Held locks stay armed.
func (b *Buffer) Flush() {
	b.dispatchConfigure(true)
}

// LockCount returns the number of outstanding freezes.
func (b *Buffer) LockCount() int {
	return b.lockCount
}

// TrackedLocks returns the number of locks the buffer observes.
func (b *Buffer) TrackedLocks() int {
	return b.tracked()
}

// Pending returns copies of the pending client, wrapper and frame sets.
func (b *Buffer) Pending() (client, wrapper, frame PendingChangeSet) {
	return b.client, b.wrapper, b.frame
}

// Dispatches returns how many flushes have reached the async port.
func (b *Buffer) Dispatches() int {
	return b.dispatches
}

func (b *Buffer) dispatchConfigure(force bool) {
	if b.flushing {
		// The running flush drains whatever was just merged.
		return
	}

	immediate := b.frame.Mask.Has(MaskStacking) ||
		(b.frame.Mask.Has(MaskSize) && b.async.HasCustomShape()) ||
		force

	dispatch := b.lockCount == 0 && b.hasWork()

	if !dispatch && !immediate {
		return
	}
	b.flush(immediate)
}

// flush zeroes the freeze count, drains the pending sets in frame, wrapper,
// client order and re-arms the locks that were armed when it started and
// are still tracked.
func (b *Buffer) flush(immediate bool) {
	b.flushing = true
	defer func() { b.flushing = false }()

	var held []*LockHandle
	for _, l := range b.resolveLocks() {
		if l.armed {
			l.armed = false
			held = append(held, l)
		}
	}
	b.lockCount = 0

	if b.hasWork() {
		b.dispatches++
		b.logger.Debug("dispatching configure requests",
			"frame", b.frame.Mask,
			"wrapper", b.wrapper.Mask,
			"client", b.client.Mask,
			"immediate", immediate,
			"locks", len(held))
	}
	for b.hasWork() {
		if b.frame.Pending() {
			c, m := b.frame.take()
			b.async.RequestConfigureOnFrame(c, m)
		}
		if b.wrapper.Pending() {
			c, m := b.wrapper.take()
			b.async.RequestConfigureOnWrapper(c, m)
		}
		if b.client.Pending() {
			c, m := b.client.take()
			b.async.RequestConfigureOnClient(c, m)
		}
	}

	for _, l := range held {
		if b.isTracked(l) {
			l.owner.Lock()
		}
	}

	b.locks = append(b.locks, b.deferred...)
	b.deferred = nil
}

// resolveLocks returns strong references to all tracked locks, dropping
// entries whose lock was collected without Close.
func (b *Buffer) resolveLocks() []*LockHandle {
	held := make([]*LockHandle, 0, len(b.locks))
	live := make([]weak.Pointer[LockHandle], 0, len(b.locks))
	lost := 0
	for _, wp := range b.locks {
		l := wp.Value()
		if l == nil {
			lost++
			continue
		}
		held = append(held, l)
		live = append(live, wp)
	}
	b.locks = live
	for range lost {
		b.violate("rearm", ErrLockLost)
	}
	return held
}

func (b *Buffer) hasWork() bool {
	return b.frame.Pending() || b.wrapper.Pending() || b.client.Pending()
}

func (b *Buffer) tracked() int {
	return len(b.locks) + len(b.deferred)
}

func (b *Buffer) isTracked(l *LockHandle) bool {
	wp := weak.Make(l)
	for _, t := range b.locks {
		if t == wp {
			return true
		}
	}
	return false
}

func (b *Buffer) violate(op string, err error) {
	ierr := &InvariantError{
		Op:        op,
		LockCount: b.lockCount,
		Tracked:   b.tracked(),
		Err:       err,
	}
	if b.policy == PolicyPanic {
		panic(ierr)
	}
	b.logger.Error("configure buffer invariant violated", "error", ierr)
}

func removeLock(locks []weak.Pointer[LockHandle], wp weak.Pointer[LockHandle]) []weak.Pointer[LockHandle] {
	for i, t := range locks {
		if t == wp {
			last := len(locks) - 1
			locks[i] = locks[last]
			locks[last] = weak.Pointer[LockHandle]{}
			return locks[:last]
		}
	}
	return locks
}
