//go:build !linux

package fsdriver

// GetFree is a portable fallback for platforms without statfs(2); it
// reports a fixed 1 TiB free of 1 TiB total rather than failing SITE FREE
// outright.
func (d *Driver) GetFree(_ string) (freeBytes, totalBytes uint64, err error) {
	const unbounded = 1 << 40

	return unbounded, unbounded, nil
}
