package ftpserver

// commandHandler is one entry of the command table. QUIT is handled
// specially by the Session Engine (it must send its reply only after the
// loop decides to exit), so it isn't part of this table.
type commandHandler func(s *session, param string)

// commandTable maps the 4-character command word to its handler, per
// §4.4. Matching is case-sensitive on the word as parsed off the wire: the
// reader preserves casing, so a lower-case command simply won't be found
// here and falls through to "Unknown command" — a known divergence from
// RFC 959, preserved as-is.
var commandTable = map[string]commandHandler{ //nolint:gochecknoglobals
	"PWD":  (*session).handlePWD,
	"CWD":  (*session).handleCWD,
	"CDUP": (*session).handleCDUP,
	"MODE": (*session).handleMODE,
	"STRU": (*session).handleSTRU,
	"TYPE": (*session).handleTYPE,
	"PASV": (*session).handlePASV,
	"PORT": (*session).handlePORT,
	"LIST": (*session).handleLIST,
	"NLST": (*session).handleNLST,
	"MLSD": (*session).handleMLSD,
	"DELE": (*session).handleDELE,
	"NOOP": (*session).handleNOOP,
	"RETR": (*session).handleRETR,
	"STOR": (*session).handleSTOR,
	"MKD":  (*session).handleMKD,
	"RMD":  (*session).handleRMD,
	"RNFR": (*session).handleRNFR,
	"RNTO": (*session).handleRNTO,
	"FEAT": (*session).handleFEAT,
	"MDTM": (*session).handleMDTM,
	"SIZE": (*session).handleSIZE,
	"SITE": (*session).handleSITE,
	"STAT": (*session).handleSTAT,
}

// dispatch looks up and invokes the handler for command, reporting whether
// the session loop should end (true only for QUIT).
func (s *session) dispatch(command, param string) (quit bool) {
	if command == "QUIT" {
		return true
	}

	handler, ok := commandTable[command]
	if !ok {
		s.writeReply(500, "Unknown command")

		return false
	}

	handler(s, param)

	return false
}
