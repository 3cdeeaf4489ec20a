//go:build linux

package fsdriver

import "golang.org/x/sys/unix"

// GetFree implements ftpserver.FileSystem using statfs(2), mirroring the
// original firmware's getfree(volume) -> (free_clusters, cluster_size,
// total_clusters) but expressed in bytes, as SITE FREE's reply wants.
func (d *Driver) GetFree(path string) (freeBytes, totalBytes uint64, err error) {
	var stat unix.Statfs_t

	if err := unix.Statfs(d.hostPath(path), &stat); err != nil {
		return 0, 0, err
	}

	blockSize := uint64(stat.Bsize) //nolint:unconvert

	return stat.Bavail * blockSize, stat.Blocks * blockSize, nil
}
