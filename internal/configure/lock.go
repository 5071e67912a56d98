package configure

// Countable is the narrow capability a lock uses to suppress its buffer.
type Countable interface {
	Freeze()
	Release()
}

// Tracker is a Countable that also tracks the locks it hands out.
type Tracker interface {
	Countable
	UntrackLock(l *LockHandle)
}

// Lock is the suppressor returned by Buffer.ObtainLock.
//
// Custom lock types embed a *LockHandle built with NewLockHandle and may
// override Lock or Release; overrides must call the embedded method so the
// freeze count stays balanced. The buffer re-arms a lock through the
// outermost Lock method.
type Lock interface {
	Lock()
	Release()
	Armed() bool
	Close()

	handle() *LockHandle
}

// LockFactory constructs the locks returned by Buffer.ObtainLock.
type LockFactory func(t Tracker) Lock

// LockHandle holds at most one freeze on its tracker while armed.
// The caller owns it and must Close it when done.
type LockHandle struct {
	tracker Tracker
	armed   bool
	closed  bool

	// owner is the Lock value handed to the caller, which may embed this
	// handle. It keeps owner reachable for exactly as long as the handle.
	owner Lock
}

// NewLockHandle creates an unarmed handle on t.
func NewLockHandle(t Tracker) *LockHandle {
	l := &LockHandle{tracker: t}
	l.owner = l
	return l
}

func defaultLockFactory(t Tracker) Lock {
	return NewLockHandle(t)
}

func (l *LockHandle) handle() *LockHandle {
	return l
}

// Lock arms the handle. Locking an armed or closed handle does nothing.
func (l *LockHandle) Lock() {
	if l.armed || l.closed {
		return
	}
	l.tracker.Freeze()
	l.armed = true
}

// Release disarms the handle, which may let pending changes flush. The
// handle stays disarmed until Lock is called again.
func (l *LockHandle) Release() {
	if !l.armed {
		return
	}
	// Cleared first: the flush triggered below re-arms only the locks that
	// were armed when it started.
	l.armed = false
	l.tracker.Release()
}

// Armed reports whether the handle currently holds a freeze.
func (l *LockHandle) Armed() bool {
	return l.armed
}

// Close untracks the handle and drops its freeze if it still holds one.
// It is safe to call more than once.
func (l *LockHandle) Close() {
	if l.closed {
		return
	}
	l.closed = true
	l.tracker.UntrackLock(l)
	l.Release()
}
