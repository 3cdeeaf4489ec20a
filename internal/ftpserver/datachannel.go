package ftpserver

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// dataMode is the Data Channel state machine of §4.3: unset -> passive or
// active -> opened -> closed -> unset.
type dataMode int

const (
	dataModeUnset dataMode = iota
	dataModePassive
	dataModeActive
)

// passiveAcceptTimeout bounds how long PASV's Accept waits for the client to
// dial in, per §5.
const passiveAcceptTimeout = 500 * time.Millisecond

// activeDialTimeout bounds how long the active-mode dial waits to connect.
const activeDialTimeout = 5 * time.Second

// teardownDataStream closes and releases the in-flight data connection, if
// any. It does not touch the passive listener, which persists across
// transfers within a session (§4.3.4).
func (s *session) teardownDataStream() {
	if s.dataStream != nil {
		_ = s.dataStream.Close()
		s.dataStream = nil
	}
}

// handlePASV implements §4.3.1: lazily create (or reuse) the session's
// passive listener and reply with the standard PASV quad/port tuple.
func (s *session) handlePASV(param string) {
	s.teardownDataStream()

	if s.dataListener == nil {
		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.assignedDataPort))
		if err != nil {
			s.writeReply(425, fmt.Sprintf("Can't create connection: %v", err))
			s.dataMode = dataModeUnset

			return
		}

		s.dataListener = listener
	}

	high := s.assignedDataPort >> 8
	low := s.assignedDataPort & 0xff

	s.writeReply(227, fmt.Sprintf(
		"Entering Passive Mode (%s,%d,%d).",
		strings.ReplaceAll(s.serverIP, ".", ","), high, low))

	s.dataMode = dataModePassive
}

// handlePORT implements §4.3.2: parse the client's advertised endpoint and
// switch the session into active mode.
func (s *session) handlePORT(param string) {
	ip, port, err := parsePortArg(param)
	if err != nil {
		s.writeReply(501, fmt.Sprintf("Couldn't parse PORT argument: %v", err))
		s.dataMode = dataModeUnset

		return
	}

	s.teardownDataStream()
	s.clientIP = ip
	s.clientPort = port
	s.dataMode = dataModeActive

	s.writeReply(200, "PORT command successful")
}

// parsePortArg parses the six comma-separated decimal numbers of a PORT
// parameter into an IPv4 address and 16-bit port.
func parsePortArg(param string) (ip net.IP, port uint16, err error) {
	parts := strings.Split(param, ",")
	if len(parts) != 6 {
		return nil, 0, fmt.Errorf("expected 6 comma-separated numbers, got %d", len(parts))
	}

	nums := make([]int, 6)

	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 || n > 255 {
			return nil, 0, fmt.Errorf("invalid octet %q", p)
		}

		nums[i] = n
	}

	ip = net.IPv4(byte(nums[0]), byte(nums[1]), byte(nums[2]), byte(nums[3]))
	port = uint16(nums[4])*256 + uint16(nums[5])

	return ip, port, nil
}

// openDataConn implements §4.3.3: open the data connection for the command
// currently being handled, writing a 425 reply on failure.
func (s *session) openDataConn() (net.Conn, error) {
	switch s.dataMode {
	case dataModeUnset:
		s.writeReply(425, "No data connection")

		return nil, newNetworkError("open data connection", fmt.Errorf("data mode not set"))

	case dataModePassive:
		if tcpListener, ok := s.dataListener.(*net.TCPListener); ok {
			if err := tcpListener.SetDeadline(time.Now().Add(passiveAcceptTimeout)); err != nil {
				s.writeReply(425, fmt.Sprintf("Can't create connection: %v", err))

				return nil, newNetworkError("set passive accept deadline", err)
			}
		}

		conn, err := s.dataListener.Accept()
		if err != nil {
			s.writeReply(425, fmt.Sprintf("Can't create connection: %v", err))

			return nil, newNetworkError("passive accept", err)
		}

		s.dataStream = conn

		return conn, nil

	case dataModeActive:
		dialer := &net.Dialer{
			Timeout: activeDialTimeout,
			Control: dialControl,
			LocalAddr: &net.TCPAddr{
				Port: int(s.assignedDataPort),
			},
		}

		conn, err := dialer.Dial("tcp", fmt.Sprintf("%s:%d", s.clientIP, s.clientPort))
		if err != nil {
			s.writeReply(425, fmt.Sprintf("Can't create connection: %v", err))

			return nil, newNetworkError("active dial", err)
		}

		s.dataStream = conn

		return conn, nil
	}

	s.writeReply(425, "No data connection")

	return nil, newNetworkError("open data connection", fmt.Errorf("unknown data mode"))
}

// dataPortForReply reports the port to cite in a transfer's preliminary 150
// reply: the session's own assigned port in passive mode, but the
// client-supplied port in active mode, per §3's data_port model.
func (s *session) dataPortForReply() uint16 {
	if s.dataMode == dataModeActive {
		return s.clientPort
	}

	return s.assignedDataPort
}

// closeDataConn implements §4.3.4: tear down the in-flight data stream and
// reset the mode to unset. Called on every exit of a data-bearing handler.
func (s *session) closeDataConn() {
	s.teardownDataStream()
	s.dataMode = dataModeUnset
}
