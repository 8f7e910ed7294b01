package input

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential tells the kernel the range is about to be read front to
// back. Failure only costs readahead, so the error is ignored.
func adviseSequential(f *os.File, off, length int64) {
	_ = unix.Fadvise(int(f.Fd()), off, length, unix.FADV_SEQUENTIAL)
}
