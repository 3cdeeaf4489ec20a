package ftpserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCommandLineBasic(t *testing.T) {
	outcome, command, param := parseCommandLine([]byte("USER bob\r\n"))
	require.Equal(t, readOK, outcome)
	require.Equal(t, "USER", command)
	require.Equal(t, "bob", param)
}

func TestParseCommandLinePreservesCase(t *testing.T) {
	// Handler selection is case-sensitive on the wire-preserved word; this
	// is a documented divergence from RFC 959, not a bug to silently fix.
	outcome, command, _ := parseCommandLine([]byte("user bob\r\n"))
	require.Equal(t, readOK, outcome)
	require.Equal(t, "user", command)
}

func TestParseCommandLineNoParam(t *testing.T) {
	outcome, command, param := parseCommandLine([]byte("NOOP\r\n"))
	require.Equal(t, readOK, outcome)
	require.Equal(t, "NOOP", command)
	require.Empty(t, param)
}

func TestParseCommandLineEmpty(t *testing.T) {
	outcome, _, _ := parseCommandLine([]byte("\r\n"))
	require.Equal(t, readEmpty, outcome)
}

func TestParseCommandLineMissingTerminatorIsSyntaxError(t *testing.T) {
	outcome, _, _ := parseCommandLine([]byte("RETR somefile.txt"))
	require.Equal(t, readSyntaxError, outcome)
}

func TestParseCommandLineParamTooLong(t *testing.T) {
	line := "STOR " + strings.Repeat("a", maxParamLen) + "\r\n"

	outcome, _, _ := parseCommandLine([]byte(line))
	require.Equal(t, readTooLong, outcome)
}

func TestParseCommandLineParamAtBoundaryIsAccepted(t *testing.T) {
	line := "STOR " + strings.Repeat("a", maxParamLen-1) + "\r\n"

	outcome, _, param := parseCommandLine([]byte(line))
	require.Equal(t, readOK, outcome)
	require.Len(t, param, maxParamLen-1)
}

func TestParseCommandLineCommandCappedAtFourLetters(t *testing.T) {
	outcome, command, _ := parseCommandLine([]byte("ABCDEFG\r\n"))
	require.Equal(t, readOK, outcome)
	require.Equal(t, "ABCD", command)
}
