package ftpserver

import "fmt"

// handleMODE implements §4.4's MODE row: only Stream mode is supported.
func (s *session) handleMODE(param string) {
	if param != "S" {
		s.writeReply(504, "Only S(tream) mode is supported")

		return
	}

	s.writeReply(200, "S Ok")
}

// handleSTRU implements §4.4's STRU row: only File structure is supported.
func (s *session) handleSTRU(param string) {
	if param != "F" {
		s.writeReply(504, "Only F(ile) structure is supported")

		return
	}

	s.writeReply(200, "F Ok")
}

// handleTYPE implements §4.4's TYPE row.
func (s *session) handleTYPE(param string) {
	switch param {
	case "A":
		s.asciiType = true
		s.writeReply(200, "TYPE is now ASCII")
	case "I":
		s.asciiType = false
		s.writeReply(200, "TYPE is now 8-bit binary")
	default:
		s.writeReply(504, "Unknown TYPE")
	}
}

// handleNOOP implements §4.4's NOOP row. It leaves every observable session
// variable unchanged, per §8's idempotence invariant.
func (s *session) handleNOOP(_ string) {
	s.writeReply(200, "Zzz...")
}

// handleFEAT implements §4.4's FEAT row, with its literal multi-line reply
// text.
func (s *session) handleFEAT(_ string) {
	s.writeLine("211-Extensions supported:")
	s.writeLine(" MDTM")
	s.writeLine(" MLSD")
	s.writeLine(" SIZE")
	s.writeLine(" SITE FREE")
	s.writeLine("211 End.")
}

// handleSITE implements §4.4's SITE FREE row; SITE with any other argument
// is unknown.
func (s *session) handleSITE(param string) {
	if param != "FREE" {
		s.writeReply(550, "Unknown SITE command")

		return
	}

	free, total, err := s.server.FS.GetFree(s.cwd)
	if err != nil {
		s.writeReply(550, "Can't determine free space")

		return
	}

	const bytesPerMB = 1 << 20

	s.writeReply(211, fmt.Sprintf("%d MB free of %d MB capacity", free/bytesPerMB, total/bytesPerMB))
}

// handleSTAT implements §4.4's STAT row. The original firmware's handler
// has a commented-out multi-line body; the one-line reply below is the
// actual behavior, preserved as-is per §9.
func (s *session) handleSTAT(_ string) {
	minutes := int(s.server.Settings.IdleTimeout.Minutes())

	s.writeReply(221, fmt.Sprintf("FTP Server status: you will be disconnected after %d minutes of inactivity", minutes))
}
