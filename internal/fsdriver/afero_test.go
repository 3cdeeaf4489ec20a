package fsdriver

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/oxipack/cmsftpd/internal/ftpserver"
)

func newTestDriver() *Driver {
	return &Driver{Fs: afero.NewMemMapFs(), BaseDir: "/"}
}

func TestMkdirStatRename(t *testing.T) {
	d := newTestDriver()

	require.NoError(t, d.Mkdir("/sub"))

	entry, err := d.Stat("/sub")
	require.NoError(t, err)
	require.True(t, entry.IsDir())

	require.NoError(t, d.Rename("/sub", "/sub2"))

	_, err = d.Stat("/sub")
	require.ErrorIs(t, err, ftpserver.ErrNotExist)

	_, err = d.Stat("/sub2")
	require.NoError(t, err)
}

func TestMkdirRejectsExisting(t *testing.T) {
	d := newTestDriver()

	require.NoError(t, d.Mkdir("/sub"))
	require.ErrorIs(t, d.Mkdir("/sub"), ftpserver.ErrAlreadyExists)
}

func TestOpenFileWriteThenRead(t *testing.T) {
	d := newTestDriver()

	f, err := d.OpenFile("/a.txt", ftpserver.OpenCreateWrite)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = d.OpenFile("/a.txt", ftpserver.OpenRead)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
	require.NoError(t, f.Close())
}

func TestOpenDirSkipsNothingButSortsEntries(t *testing.T) {
	d := newTestDriver()

	require.NoError(t, d.Mkdir("/b"))
	require.NoError(t, d.Mkdir("/a"))

	dir, err := d.OpenDir("/")
	require.NoError(t, err)

	first, err := dir.Next()
	require.NoError(t, err)
	require.Equal(t, "a", first.Name)

	second, err := dir.Next()
	require.NoError(t, err)
	require.Equal(t, "b", second.Name)
}

func TestStatMissingReturnsErrNotExist(t *testing.T) {
	d := newTestDriver()

	_, err := d.Stat("/missing")
	require.ErrorIs(t, err, ftpserver.ErrNotExist)
}
