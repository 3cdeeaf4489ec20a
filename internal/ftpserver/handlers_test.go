package ftpserver

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestSession wires a session directly to one end of an in-memory
// net.Pipe, returning the session and a bufio.Reader on the other end for
// asserting on replies without going through a real TCP round trip.
func newTestSession(t *testing.T) (*session, *bufio.Reader) {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})

	srv := NewServer(Settings{IdleTimeout: time.Minute}, newMemDriver(), nullLogger{})

	s := newSession(srv, serverConn, 1, 0)

	return s, bufio.NewReader(clientConn)
}

func readReply(t *testing.T, r *bufio.Reader) string {
	t.Helper()

	line, err := r.ReadString('\n')
	require.NoError(t, err)

	return line
}

func TestHandleNOOP(t *testing.T) {
	s, r := newTestSession(t)

	go s.handleNOOP("")

	require.Equal(t, "200 Zzz...\r\n", readReply(t, r))
}

func TestHandleTYPE(t *testing.T) {
	s, r := newTestSession(t)

	go s.handleTYPE("A")
	require.Equal(t, "200 TYPE is now ASCII\r\n", readReply(t, r))
	require.True(t, s.asciiType)

	go s.handleTYPE("I")
	require.Equal(t, "200 TYPE is now 8-bit binary\r\n", readReply(t, r))
	require.False(t, s.asciiType)

	go s.handleTYPE("Z")
	require.Equal(t, "504 Unknown TYPE\r\n", readReply(t, r))
}

func TestHandleMODEAndSTRU(t *testing.T) {
	s, r := newTestSession(t)

	go s.handleMODE("S")
	require.Equal(t, "200 S Ok\r\n", readReply(t, r))

	go s.handleMODE("B")
	require.Equal(t, "504 Only S(tream) mode is supported\r\n", readReply(t, r))

	go s.handleSTRU("F")
	require.Equal(t, "200 F Ok\r\n", readReply(t, r))

	go s.handleSTRU("R")
	require.Equal(t, "504 Only F(ile) structure is supported\r\n", readReply(t, r))
}

func TestHandleFEAT(t *testing.T) {
	s, r := newTestSession(t)

	go s.handleFEAT("")

	require.Equal(t, "211-Extensions supported:\r\n", readReply(t, r))
	require.Equal(t, " MDTM\r\n", readReply(t, r))
	require.Equal(t, " MLSD\r\n", readReply(t, r))
	require.Equal(t, " SIZE\r\n", readReply(t, r))
	require.Equal(t, " SITE FREE\r\n", readReply(t, r))
	require.Equal(t, "211 End.\r\n", readReply(t, r))
}

func TestHandleSTAT(t *testing.T) {
	s, r := newTestSession(t)
	s.server.Settings.IdleTimeout = 10 * time.Minute

	go s.handleSTAT("")

	require.Equal(t, "221 FTP Server status: you will be disconnected after 10 minutes of inactivity\r\n", readReply(t, r))
}

func TestHandlePWDAndCWD(t *testing.T) {
	s, r := newTestSession(t)

	go s.handlePWD("")
	require.Equal(t, "257 \"/\" is your current directory\r\n", readReply(t, r))

	require.NoError(t, s.server.FS.Mkdir("/sub"))

	go s.handleCWD("/sub")
	require.Equal(t, "250 Directory successfully changed.\r\n", readReply(t, r))
	require.Equal(t, "/sub", s.cwd)

	go s.handleCWD("")
	require.Equal(t, "501 Missing parameter\r\n", readReply(t, r))

	go s.handleCWD("/nope")
	require.Equal(t, "550 No such file or directory\r\n", readReply(t, r))
}

func TestHandleRNTOWithoutPriorRNFRIsRejected(t *testing.T) {
	s, r := newTestSession(t)

	go s.handleRNTO("b.txt")

	require.Equal(t, "503 RNFR required first\r\n", readReply(t, r))
}

func TestRenamePairDoesNotClearRenameFrom(t *testing.T) {
	s, r := newTestSession(t)

	f, err := s.server.FS.OpenFile("/a.txt", OpenCreateWrite)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	go s.handleRNFR("a.txt")
	require.Equal(t, "350 RNFR accepted - file exists, ready for destination\r\n", readReply(t, r))
	require.Equal(t, "/a.txt", s.renameFrom)

	go s.handleRNTO("b.txt")
	require.Equal(t, "250 File successfully renamed or moved\r\n", readReply(t, r))

	// §9: rename_from is never cleared, even on success.
	require.Equal(t, "/a.txt", s.renameFrom)
}

func TestHandleMDTMQueryAndSet(t *testing.T) {
	s, r := newTestSession(t)

	require.NoError(t, s.server.FS.Mkdir("/sub")) // ensures driver has some state

	f, err := s.server.FS.OpenFile("/a.txt", OpenCreateWrite)
	require.NoError(t, err)
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	go s.handleMDTM("19991231120000 a.txt")
	require.Equal(t, "200 Ok\r\n", readReply(t, r))

	go s.handleMDTM("a.txt")
	require.Equal(t, "213 19991231120000\r\n", readReply(t, r))
}

func TestHandleSIZE(t *testing.T) {
	s, r := newTestSession(t)

	f, err := s.server.FS.OpenFile("/a.txt", OpenCreateWrite)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	go s.handleSIZE("a.txt")
	require.Equal(t, "213 5\r\n", readReply(t, r))
}

// TestHandleRETRResetsDataModeOnDataConnFailure exercises the §4.3.4
// teardown path when the data connection itself can't be opened: dialing
// an active-mode target refused locally should still clear dataMode back
// to unset, not leave it stuck on dataModeActive for the next command.
func TestHandleRETRResetsDataModeOnDataConnFailure(t *testing.T) {
	s, r := newTestSession(t)

	f, err := s.server.FS.OpenFile("/a.txt", OpenCreateWrite)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	s.dataMode = dataModeActive
	s.clientIP = net.IPv4(127, 0, 0, 1)
	s.clientPort = 1 // nothing listens here; dial fails fast with connection refused

	go s.handleRETR("a.txt")

	require.Contains(t, readReply(t, r), "425")
	require.Equal(t, dataModeUnset, s.dataMode)
}
