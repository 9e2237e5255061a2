package rest_interface

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"
	appconfig "github.com/vulpemventures/seedcheck/internal/app-config"
	rest_handler "github.com/vulpemventures/seedcheck/internal/interfaces/rest/handler"
)

type service struct {
	config                   ServiceConfig
	appConfig                *appconfig.AppConfig
	server                   *http.Server
	chCloseStreamConnections chan struct{}

	log  func(format string, a ...interface{})
	warn func(err error, format string, a ...interface{})
}

func NewService(config ServiceConfig, appConfig *appconfig.AppConfig) (*service, error) {
	logFn := func(format string, a ...interface{}) {
		format = fmt.Sprintf("service: %s", format)
		log.Infof(format, a...)
	}
	warnFn := func(err error, format string, a ...interface{}) {
		format = fmt.Sprintf("service: %s", format)
		log.WithError(err).Warnf(format, a...)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{
		config:                   config,
		appConfig:                appConfig,
		chCloseStreamConnections: make(chan struct{}),
		log:                      logFn,
		warn:                     warnFn,
	}, nil
}

func (s *service) Start() error {
	if err := s.appConfig.BackupService().Start(); err != nil {
		return err
	}
	s.log("started session janitor")

	lis, err := net.Listen("tcp", s.config.address())
	if err != nil {
		s.appConfig.BackupService().Stop()
		return err
	}

	router := rest_handler.NewRouter(
		s.appConfig.BackupService(), s.chCloseStreamConnections,
	)
	s.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.warn(err, "http server stopped unexpectedly")
		}
	}()

	s.log("start listening on %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	close(s.chCloseStreamConnections)
	s.log("closed stream connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			s.warn(err, "failed to gracefully stop http server")
		}
	}
	s.log("stopped http server")

	s.appConfig.BackupService().Stop()
	s.log("stopped session janitor")

	s.appConfig.RepoManager().Close()
	s.log("closed connection with db")

	s.log("shutdown")
}
