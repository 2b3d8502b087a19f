package csvstore

import (
	"os"
	"syscall"
)

// lockExclusive acquires an OS advisory exclusive lock on f, blocking
// until it is available. Release with unlock. This is the Go analogue of
// the original implementation's fs2::FileExt advisory locking: readers
// and writers cooperate through the same syscall.Flock protocol, so a
// crash mid-write never corrupts a concurrent reader's view, only leaves
// it holding a stale lock that the kernel releases on process exit.
func lockExclusive(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

// lockShared acquires an OS advisory shared lock on f, blocking until no
// writer holds the exclusive lock. Readers take this side of the same
// protocol so a smart-cutoff rewrite in progress is never observed
// mid-truncate.
func lockShared(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_SH)
}

func unlock(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
