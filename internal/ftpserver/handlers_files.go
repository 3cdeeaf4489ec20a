package ftpserver

import (
	"errors"
	"fmt"
	"io"
)

// transferChunkSize is the fixed buffer size used by both the RETR and
// STOR loops, per §4.4.2/§4.4.3.
const transferChunkSize = 512

// handleDELE implements §4.4's DELE row.
func (s *session) handleDELE(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	if err := s.server.FS.Unlink(path); err != nil {
		code, text := getErrorCode(err)
		s.writeReply(code, text)

		return
	}

	s.writeReply(250, fmt.Sprintf("Deleted %s", path))
}

// handleRETR implements §4.4.2: the download loop.
func (s *session) handleRETR(param string) {
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

	file, err := s.server.FS.OpenFile(path, OpenRead)
	if err != nil {
		code, text := getErrorCode(err)
		s.writeReply(code, text)

		return
	}

	conn, err := s.openDataConn()
	if err != nil {
		_ = file.Close()
		s.closeDataConn()

		return
	}

	s.writeReply(150, fmt.Sprintf("Connected to port %d, %d bytes to download", s.dataPortForReply(), entry.Size))

	buf := make([]byte, transferChunkSize)

	finalCode, finalText := s.retrieveLoop(file, conn, buf)

	_ = file.Close()
	s.closeDataConn()

	s.writeReply(finalCode, finalText)
}

// retrieveLoop copies file to conn in fixed-size chunks until EOF, a
// filesystem read error (451) or a data-stream write error (426).
func (s *session) retrieveLoop(file File, conn dataWriter, buf []byte) (code int, text string) {
	for {
		n, err := file.Read(buf)
		if n > 0 {
			if _, writeErr := conn.Write(buf[:n]); writeErr != nil {
				return getErrorCode(newNetworkError("data write", writeErr))
			}
		}

		if errors.Is(err, io.EOF) {
			return 226, "File successfully transferred"
		}

		if err != nil {
			return getErrorCode(newFileAccessError("file read", err))
		}
	}
}

// handleSTOR implements §4.4.3: the upload loop.
func (s *session) handleSTOR(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	file, err := s.server.FS.OpenFile(path, OpenCreateWrite)
	if err != nil {
		code, text := getErrorCode(err)
		s.writeReply(code, text)

		return
	}

	conn, err := s.openDataConn()
	if err != nil {
		_ = file.Close()
		s.closeDataConn()

		return
	}

	s.writeReply(150, fmt.Sprintf("Connected to port %d", s.dataPortForReply()))

	finalCode, finalText := s.storeLoop(file, conn)

	_ = file.Close()
	s.closeDataConn()

	s.writeReply(finalCode, finalText)
}

// storeLoop reads from conn, accumulating into a fixed-size output buffer
// that is flushed to file each time it fills, plus once more (partial) on
// clean EOF.
func (s *session) storeLoop(file File, conn io.Reader) (code int, text string) {
	buf := make([]byte, transferChunkSize)
	pending := 0

	for {
		n, readErr := conn.Read(buf[pending:])
		pending += n

		if pending == transferChunkSize {
			if _, writeErr := file.Write(buf[:transferChunkSize]); writeErr != nil {
				return getErrorCode(newFileAccessError("file write", writeErr))
			}

			pending = 0
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				if pending > 0 {
					if _, writeErr := file.Write(buf[:pending]); writeErr != nil {
						return getErrorCode(newFileAccessError("file write", writeErr))
					}
				}

				return 226, "File successfully transferred"
			}

			return getErrorCode(newNetworkError("data read", readErr))
		}
	}
}

// handleRNFR implements the first half of §4.4.4's rename pair.
func (s *session) handleRNFR(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	if _, err := s.server.FS.Stat(path); err != nil {
		s.writeReply(550, "No such file or directory")

		return
	}

	s.renameFrom = path
	s.writeReply(350, "RNFR accepted - file exists, ready for destination")
}

// handleRNTO implements the second half of §4.4.4's rename pair. Per §9's
// documented divergence, rename_from is never cleared, whether this
// succeeds or fails.
func (s *session) handleRNTO(param string) {
	if s.renameFrom == "" {
		s.writeReply(503, "RNFR required first")

		return
	}

	dest, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	if _, err := s.server.FS.Stat(dest); err == nil {
		s.writeReply(553, fmt.Sprintf("%q already exists", dest))

		return
	}

	parent := parentDir(dest)

	if parent != "/" {
		parentEntry, err := s.server.FS.Stat(parent)
		if err != nil || !parentEntry.IsDir() {
			s.writeReply(550, "Destination directory does not exist")

			return
		}
	}

	if err := s.server.FS.Rename(s.renameFrom, dest); err != nil {
		s.writeReply(451, "Rename failed")

		return
	}

	s.writeReply(250, "File successfully renamed or moved")
}

// parentDir returns the parent of an absolute, slash-separated path
// already produced by resolvePath, i.e. with no trailing slash.
func parentDir(path string) string {
	idx := lastSlash(path)
	if idx <= 0 {
		return "/"
	}

	return path[:idx]
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}

	return -1
}

// handleSIZE implements §4.4's SIZE row.
func (s *session) handleSIZE(param string) {
	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	entry, err := s.server.FS.Stat(path)
	if err != nil {
		s.writeReply(550, "No such file or directory")

		return
	}

	s.writeReply(213, fmt.Sprintf("%d", entry.Size))
}

// handleMDTM implements §4.4.5: a leading 14-digit timestamp sets mtime, a
// bare filename queries it.
func (s *session) handleMDTM(param string) {
	if param == "" {
		s.writeReply(501, "Missing parameter")

		return
	}

	if prefix, ok := leading14Digits(param); ok {
		name := param[len(prefix):]
		for len(name) > 0 && name[0] == ' ' {
			name = name[1:]
		}

		path, ok := s.resolveRequired(name)
		if !ok {
			return
		}

		date, timeVal, err := getDateTime(prefix)
		if err != nil {
			s.writeReply(501, "Invalid timestamp")

			return
		}

		if err := s.server.FS.Utime(path, date, timeVal); err != nil {
			s.writeReply(550, "No such file or directory")

			return
		}

		s.writeReply(200, "Ok")

		return
	}

	path, ok := s.resolveRequired(param)
	if !ok {
		return
	}

	entry, err := s.server.FS.Stat(path)
	if err != nil {
		s.writeReply(550, "No such file or directory")

		return
	}

	s.writeReply(213, makeDateTimeStr(entry.Date, entry.Time))
}
