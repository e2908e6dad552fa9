// Package lock provides the run guard that keeps a reconciliation job from running twice at once.
//
// Two backends implement Locker:
//   - MemoryLocker: a token map inside the process, enough for a single instance.
//   - RedisLocker: SET NX with a TTL and a compare-and-delete release script, for
//     several instances sharing one database.
//
// Both are non-blocking: a second Acquire on a held key fails immediately with
// ErrLockNotAcquired.
//
// # Usage
//
//	locker, err := lock.New(ctx, cfg.Lock)
//	l, err := locker.Acquire(ctx, "job:"+id)
//	if errors.Is(err, lock.ErrLockNotAcquired) {
//	    // someone else is running it
//	}
//	defer l.Release(ctx)
package lock
