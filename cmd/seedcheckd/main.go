package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	appconfig "github.com/vulpemventures/seedcheck/internal/app-config"
	"github.com/vulpemventures/seedcheck/internal/config"
	postgresdb "github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/postgres"
	"github.com/vulpemventures/seedcheck/internal/interfaces"
	rest_interface "github.com/vulpemventures/seedcheck/internal/interfaces/rest"
	"github.com/vulpemventures/seedcheck/pkg/profiler"
)

var (
	// Build info.
	version string
	commit  string
	date    string

	// Config from env vars.
	dbType          = config.GetString(config.DatabaseTypeKey)
	logLevel        = config.GetInt(config.LogLevelKey)
	datadir         = config.GetDatadir()
	port            = config.GetInt(config.PortKey)
	profilerPort    = config.GetInt(config.ProfilerPortKey)
	noProfiler      = config.GetBool(config.NoProfilerKey)
	dbDir           = filepath.Join(datadir, config.DbLocation)
	profilerDir     = filepath.Join(datadir, config.ProfilerLocation)
	statsInterval   = time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
	phraseLength    = config.GetInt(config.PhraseLengthKey)
	wordGroupSize   = config.GetInt(config.WordGroupSizeKey)
	sessionTTL      = time.Duration(config.GetInt(config.SessionTTLKey)) * time.Second
	dbUser          = config.GetString(config.DbUserKey)
	dbPassword      = config.GetString(config.DbPassKey)
	dbHost          = config.GetString(config.DbHostKey)
	dbPort          = config.GetInt(config.DbPortKey)
	dbName          = config.GetString(config.DbNameKey)
	migrationSrcURL = config.GetString(config.DbMigrationPath)
)

func main() {
	log.SetLevel(log.Level(logLevel))

	if profilerEnabled := !noProfiler; profilerEnabled {
		profilerSvc, err := profiler.NewService(profiler.ServiceOpts{
			Port:          profilerPort,
			StatsInterval: statsInterval,
			Datadir:       profilerDir,
		})
		if err != nil {
			log.WithError(err).Fatal("profiler: error while initializing")
		}

		if err := profilerSvc.Start(); err != nil {
			log.WithError(err).Fatal("profiler: error while starting")
		}
		defer profilerSvc.Stop()
	}

	var repoManagerConfig interface{} = dbDir
	if dbType == "postgres" {
		repoManagerConfig = postgresdb.DbConfig{
			DbUser:             dbUser,
			DbPassword:         dbPassword,
			DbHost:             dbHost,
			DbPort:             dbPort,
			DbName:             dbName,
			MigrationSourceURL: migrationSrcURL,
		}
	}

	serviceCfg := rest_interface.ServiceConfig{
		Port: port,
	}
	appCfg := &appconfig.AppConfig{
		Version:           version,
		Commit:            commit,
		Date:              date,
		PhraseLength:      phraseLength,
		WordGroupSize:     wordGroupSize,
		SessionTTL:        sessionTTL,
		RepoManagerType:   dbType,
		RepoManagerConfig: repoManagerConfig,
	}

	serviceManager, err := interfaces.NewRestServiceManager(serviceCfg, appCfg)
	if err != nil {
		log.WithError(err).Fatal("service: error while initializing")
	}

	if err := serviceManager.Service.Start(); err != nil {
		log.WithError(err).Fatal("service: error while starting")
	}
	defer serviceManager.Service.Stop()

	info := appCfg.BuildInfo()
	log.Infof(
		"seedcheckd %s (commit %s, built %s) using %s db",
		info.Version, info.Commit, info.Date, dbType,
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan
}
