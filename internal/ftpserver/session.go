package ftpserver

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/oxipack/cmsftpd/internal/ftplog"
)

// Fixed compile-time credentials, per §6: "Two fixed accounts, name and
// password compile-time constants". Grounded on the original firmware's
// src/ftps.h FTP_USER_NAME/FTP_USER_PASS/FTP_ADMIN_NAME/FTP_ADMIN_PASS.
const (
	userName  = "user"
	userPass  = "user"
	adminName = "oxipack"
	adminPass = "admin"
)

// adminLevel governs the login state machine of §4.5.1.
type adminLevel int

const (
	adminNone adminLevel = iota
	adminAwaitingPassword
	adminGranted
)

// session holds one instance of per-connection state, owned exclusively by
// its goroutine for the session's duration (§3, §5).
type session struct {
	server *Server
	conn   net.Conn
	id     uint32
	logger ftplog.Logger

	serverIP string
	peerIP   string

	cwd        string
	renameFrom string
	adminLevel adminLevel

	dataMode         dataMode
	dataListener     net.Listener
	dataStream       net.Conn
	clientIP         net.IP
	clientPort       uint16
	assignedDataPort uint16

	command string
	param   string

	asciiType   bool
	connectedAt time.Time
	user        string
}

func newSession(server *Server, conn net.Conn, id uint32, slotIndex int) *session {
	return &session{
		server:           server,
		conn:             conn,
		id:               id,
		logger:           server.Logger.With("clientId", id),
		cwd:              "/",
		assignedDataPort: server.Settings.DataPortBase + uint16(slotIndex),
		connectedAt:      time.Now().UTC(),
	}
}

// run is the Session Engine's top-level lifecycle, §4.5.
func (s *session) run() {
	defer s.teardown()

	s.serverIP = localIPv4(s.conn, s.server.Settings.PublicHost)
	s.peerIP = localIPv4(&reversedAddr{s.conn}, "")

	banner := s.server.Settings.Banner
	if banner == "" {
		banner = "CMS FTP Server, FTP Version 2020-02-19"
	}

	s.writeLine("220 -> " + banner)

	if !s.loginGate() {
		return
	}

	for {
		if s.server.Settings.IdleTimeout > 0 {
			if err := s.conn.SetReadDeadline(time.Now().Add(s.server.Settings.IdleTimeout)); err != nil {
				s.logger.Warn("set read deadline failed", "err", err)
			}
		}

		outcome, command, param := readCommand(s.conn)

		switch outcome {
		case readTimeout, readRecvError:
			return
		case readTooLong:
			s.writeReply(500, "Command line too long")

			continue
		case readSyntaxError:
			s.writeReply(500, "Syntax error, command unparsable")

			continue
		case readEmpty:
			continue
		}

		s.command = command
		s.param = param

		if s.dispatch(command, param) {
			s.writeReply(221, "Goodbye")

			return
		}
	}
}

func (s *session) teardown() {
	s.closeDataConn()

	if s.dataListener != nil {
		_ = s.dataListener.Close()
		s.dataListener = nil
	}
}

// loginGate implements §4.5.1. It returns false on any failure, in which
// case the session must proceed directly to teardown with no further reply.
func (s *session) loginGate() bool {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.server.Settings.LoginTimeout)); err != nil {
		return false
	}

	outcome, command, param := readCommand(s.conn)
	if outcome != readOK || command != "USER" {
		if outcome == readOK {
			s.writeReply(530, "Please send USER first")
		}

		return false
	}

	switch param {
	case userName:
		s.adminLevel = adminNone
	case adminName:
		s.adminLevel = adminAwaitingPassword
	default:
		s.writeReply(530, "Not logged in")

		return false
	}

	s.user = param
	s.writeReply(331, "OK. Password required")

	outcome, command, param = readCommand(s.conn)
	if outcome != readOK || command != "PASS" {
		return false
	}

	var wantPass string
	if s.adminLevel == adminAwaitingPassword {
		wantPass = adminPass
	} else {
		wantPass = userPass
	}

	if param != wantPass {
		s.writeReply(530, "Not logged in")

		return false
	}

	if s.adminLevel == adminAwaitingPassword {
		s.adminLevel = adminGranted
		s.writeReply(230, "OK, logged in as admin")
	} else {
		s.writeReply(230, "OK, logged in as user")
	}

	return true
}

func (s *session) writeLine(line string) {
	if _, err := s.conn.Write([]byte(line + "\r\n")); err != nil {
		s.logger.Warn("write failed", "err", err)
	}
}

func (s *session) writeReply(code int, text string) {
	lines := strings.Split(text, "\n")

	codeStr := strconv.Itoa(code)

	for i, line := range lines {
		if i < len(lines)-1 {
			s.writeLine(codeStr + "-" + line)
		} else {
			s.writeLine(codeStr + " " + line)
		}
	}
}

// reversedAddr lets localIPv4 be reused to extract the peer's IPv4 address
// by reading RemoteAddr instead of LocalAddr.
type reversedAddr struct {
	net.Conn
}

func (r *reversedAddr) LocalAddr() net.Addr { return r.Conn.RemoteAddr() }
