//go:build !linux

package input

import "os"

func adviseSequential(*os.File, int64, int64) {}
