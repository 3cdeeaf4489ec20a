// Command cmsftpd runs the FTP server: it loads settings.toml (creating a
// default one if missing), wires up the filesystem driver and logger, and
// serves control connections until SIGTERM/SIGINT.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/oxipack/cmsftpd/internal/config"
	"github.com/oxipack/cmsftpd/internal/fsdriver"
	"github.com/oxipack/cmsftpd/internal/ftplog"
	"github.com/oxipack/cmsftpd/internal/ftpserver"
)

func main() {
	var confFile string

	flag.StringVar(&confFile, "conf", "settings.toml", "Configuration file")
	flag.Parse()

	baseLogger := logrus.New()

	cfg, err := config.Load(confFile)
	if err != nil {
		baseLogger.WithField("confFile", confFile).Fatalf("could not load configuration: %v", err)
	}

	driver := fsdriver.New(cfg.BaseDir)
	logger := ftplog.NewLogrusLogger(logrus.NewEntry(baseLogger).WithField("component", "ftpserver"))

	srv := ftpserver.NewServer(cfg.ToSettings(), driver, logger)

	srv.OnConnect = func(clientID uint32) {
		baseLogger.WithField("clientId", clientID).Info("client connected")
	}
	srv.OnDisconnect = func(clientID uint32) {
		baseLogger.WithField("clientId", clientID).Info("client disconnected")
	}

	done := make(chan struct{})

	go signalHandler(srv, done)

	if err := srv.ListenAndServe(); err != nil {
		baseLogger.Errorf("server stopped: %v", err)
		close(done)
	}
}

func signalHandler(srv *ftpserver.Server, done chan struct{}) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(ch)

	select {
	case <-ch:
		_ = srv.Stop()
	case <-done:
	}
}
