package ftplog

import "github.com/sirupsen/logrus"

// logrusLogger adapts a *logrus.Entry to the Logger interface, mirroring
// ftpserverlib's own logrus wiring in its sample main().
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps a *logrus.Entry as a Logger.
func NewLogrusLogger(entry *logrus.Entry) Logger {
	return &logrusLogger{entry: entry}
}

func (l *logrusLogger) fields(keyvals ...interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keyvals)/2)

	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}

		fields[key] = keyvals[i+1]
	}

	return fields
}

func (l *logrusLogger) Debug(event string, keyvals ...interface{}) {
	l.entry.WithFields(l.fields(keyvals...)).Debug(event)
}

func (l *logrusLogger) Info(event string, keyvals ...interface{}) {
	l.entry.WithFields(l.fields(keyvals...)).Info(event)
}

func (l *logrusLogger) Warn(event string, keyvals ...interface{}) {
	l.entry.WithFields(l.fields(keyvals...)).Warn(event)
}

func (l *logrusLogger) Error(event string, err error, keyvals ...interface{}) {
	l.entry.WithFields(l.fields(keyvals...)).WithError(err).Error(event)
}

func (l *logrusLogger) With(keyvals ...interface{}) Logger {
	return &logrusLogger{entry: l.entry.WithFields(l.fields(keyvals...))}
}
