package ftpserver

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// resolveRequired resolves param against the session's cwd, rejecting an
// empty parameter outright. Several handlers (CWD, MKD, RMD, RNFR, RNTO,
// DELE) require a non-empty argument per §4.4's table.
func (s *session) resolveRequired(param string) (path string, ok bool) {
	if param == "" {
		s.writeReply(501, "Missing parameter")

		return "", false
	}

	path, err := resolvePath(param, s.cwd)
	if err != nil {
		s.writeReply(500, "Path too long")

		return "", false
	}

	return path, true
}

// handlePWD implements §4.4's PWD row.
func (s *session) handlePWD(_ string) {
	s.writeReply(257, fmt.Sprintf("%q is your current directory", s.cwd))
}

// handleCWD implements §4.4's CWD row. Note that handleCDUP is a thin
// alias for this handler, not a "pop one path component" operation — see
// §9's documented divergence from RFC 959.
func (s *session) handleCWD(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	entry, err := s.server.FS.Stat(path)
	if err != nil {
		code, text := getErrorCode(err)
		s.writeReply(code, text)

		return
	}

	if !entry.IsDir() {
		s.writeReply(550, "Not a directory")

		return
	}

	s.cwd = path
	s.writeReply(250, "Directory successfully changed.")
}

// handleCDUP implements §4.4's CDUP row, deliberately identical to CWD.
func (s *session) handleCDUP(param string) {
	s.handleCWD(param)
}

// handleMKD implements §4.4's MKD row.
func (s *session) handleMKD(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	if err := s.server.FS.Mkdir(path); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			s.writeReply(521, fmt.Sprintf("%q already exists", path))

			return
		}

		s.writeReply(550, "Can't create directory")

		return
	}

	s.writeReply(257, fmt.Sprintf("%q created", path))
}

// handleRMD implements §4.4's RMD row. The filesystem collaborator exposes
// a single remove operation for both files and (empty) directories.
func (s *session) handleRMD(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	if err := s.server.FS.Unlink(path); err != nil {
		s.writeReply(550, "No such file or directory")

		return
	}

	s.writeReply(250, fmt.Sprintf("%q removed", path))
}

// handleLIST implements §4.4's LIST row and §4.4.1's line format.
func (s *session) handleLIST(param string) {
	s.listLike(param, func(conn dataWriter, entry *DirEntry) {
		name := entry.DisplayName()
		if entry.IsDir() {
			_, _ = conn.Write([]byte(fmt.Sprintf("+/,\t%s\r\n", name)))
		} else {
			_, _ = conn.Write([]byte(fmt.Sprintf("+r,s%d,\t%s\r\n", entry.Size, name)))
		}
	}, "Directory send OK.")
}

// handleNLST implements §4.4's NLST row and §4.4.1's line format.
func (s *session) handleNLST(param string) {
	s.listLike(param, func(conn dataWriter, entry *DirEntry) {
		_, _ = conn.Write([]byte(entry.DisplayName() + "\r\n"))
	}, "Directory send OK.")
}

// handleMLSD implements §4.4's MLSD row and §4.4.1's line format.
func (s *session) handleMLSD(param string) {
	s.listLike(param, func(conn dataWriter, entry *DirEntry) {
		kind := "file"
		if entry.IsDir() {
			kind = "dir"
		}

		if entry.Date != 0 {
			_, _ = conn.Write([]byte(fmt.Sprintf(
				"Type=%s;Size=%d;Modify=%s; %s\r\n",
				kind, entry.Size, makeDateTimeStr(entry.Date, entry.Time), entry.DisplayName())))
		} else {
			_, _ = conn.Write([]byte(fmt.Sprintf(
				"Type=%s;Size=%d; %s\r\n", kind, entry.Size, entry.DisplayName())))
		}
	}, "")
}

// dataWriter is the minimal capability handleLIST/NLST/MLSD need from the
// data connection.
type dataWriter interface {
	Write(p []byte) (int, error)
}

// listLike is the shared LIST/NLST/MLSD skeleton: resolve the directory,
// open the data connection, stream filtered/formatted entries, then send
// the final reply. When finalText is empty the caller is responsible for
// its own final reply (used by MLSD, whose text carries the match count).
func (s *session) listLike(param string, emit func(dataWriter, *DirEntry), finalText string) {
	path, err := resolvePath(param, s.cwd)
	if err != nil {
		s.writeReply(550, "Can't open directory")

		return
	}

	dir, err := s.server.FS.OpenDir(path)
	if err != nil {
		code, text := getErrorCode(err)
		s.writeReply(code, text)

		return
	}

	conn, err := s.openDataConn()
	if err != nil {
		_ = dir.Close()
		s.closeDataConn()

		return
	}

	s.writeReply(150, "Accepted data connection")

	count := 0

	for {
		entry, nextErr := dir.Next()
		if nextErr != nil {
			if !errors.Is(nextErr, io.EOF) {
				s.logger.Warn("directory read failed", "err", nextErr)
			}

			break
		}

		if strings.HasPrefix(entry.DisplayName(), ".") {
			continue
		}

		emit(conn, entry)
		count++
	}

	_ = dir.Close()
	s.closeDataConn()

	if finalText != "" {
		s.writeReply(226, finalText)
	} else {
		s.writeReply(226, fmt.Sprintf("Options: -a -l, %d matches total", count))
	}
}
