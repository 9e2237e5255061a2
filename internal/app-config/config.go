package appconfig

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vulpemventures/seedcheck/internal/config"
	"github.com/vulpemventures/seedcheck/internal/core/application"
	"github.com/vulpemventures/seedcheck/internal/core/ports"
	phrase_seeded "github.com/vulpemventures/seedcheck/internal/infrastructure/random-source/phrase-seeded"
	dbbadger "github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/badger"
	"github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/inmemory"
	postgresdb "github.com/vulpemventures/seedcheck/internal/infrastructure/storage/db/postgres"
)

// AppConfig is the struct holding all configuration options for the backup
// application service.
// This data structure acts also as a factory of the mentioned application
// service and the portable services used by it.
// Public config args:
//   - PhraseLength - (required) The number of words of a recovery phrase.
//   - WordGroupSize - (required) The number of words of each group shown during verification.
//   - SessionTTL - (required) The duration a validation session is kept after its last update.
//   - RandomSalt - (optional) The salt mixed into the seed of every session's random source. A random one is generated if not defined.
//   - RepoManagerType - (required) One of the supported repository manager types.
//   - RepoManagerConfig - (optional) Custom config args for the repository manager based on its type.
type AppConfig struct {
	Version string
	Commit  string
	Date    string

	PhraseLength  int
	WordGroupSize int
	SessionTTL    time.Duration
	RandomSalt    []byte

	RepoManagerType   string
	RepoManagerConfig interface{}

	rm        ports.RepoManager
	rf        ports.RandomSourceFactory
	backupSvc *application.BackupService
}

func (c *AppConfig) Validate() error {
	if c.PhraseLength <= 0 {
		return fmt.Errorf("missing phrase length")
	}
	if c.WordGroupSize <= 0 {
		return fmt.Errorf("missing word group size")
	}
	if c.PhraseLength%c.WordGroupSize != 0 {
		return fmt.Errorf(
			"phrase length %d is not a multiple of word group size %d",
			c.PhraseLength, c.WordGroupSize,
		)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("missing session ttl")
	}
	if len(c.RepoManagerType) == 0 {
		return fmt.Errorf("missing repo manager type")
	}
	if _, ok := config.SupportedDbs[c.RepoManagerType]; !ok {
		return fmt.Errorf(
			"repo manager type not supported, must be one of: %s",
			config.SupportedDbs,
		)
	}
	if _, err := c.randomFactory(); err != nil {
		return err
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}

	return nil
}

func (c *AppConfig) RepoManager() ports.RepoManager {
	return c.rm
}

func (c *AppConfig) RandomSourceFactory() ports.RandomSourceFactory {
	return c.rf
}

func (c *AppConfig) BackupService() *application.BackupService {
	return c.backupService()
}

func (c *AppConfig) BuildInfo() BuildInfo {
	version := "dev"
	if c.Version != "" {
		version = c.Version
	}
	commit := "none"
	if c.Commit != "" {
		commit = c.Commit
	}
	date := "unknown"
	if c.Date != "" {
		date = c.Date
	}
	return BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

func (c *AppConfig) repoManager() (ports.RepoManager, error) {
	if c.rm != nil {
		return c.rm, nil
	}

	switch c.RepoManagerType {
	case "inmemory":
		c.rm = inmemory.NewRepoManager()
		return c.rm, nil
	case "badger":
		if c.RepoManagerConfig == nil {
			return nil, fmt.Errorf("missing repo manager config args")
		}
		datadir, ok := c.RepoManagerConfig.(string)
		if !ok {
			return nil, fmt.Errorf("invalid repo manager config type, must be string")
		}
		rm, err := dbbadger.NewRepoManager(datadir, log.New())
		if err != nil {
			return nil, err
		}
		c.rm = rm
		return c.rm, nil
	case "postgres":
		dbConfig, ok := c.RepoManagerConfig.(postgresdb.DbConfig)
		if !ok {
			return nil, fmt.Errorf("invalid repo manager config type, must be postgresdb.DbConfig")
		}

		rm, err := postgresdb.NewRepoManager(dbConfig)
		if err != nil {
			return nil, err
		}

		c.rm = rm
		return c.rm, nil
	default:
		return nil, fmt.Errorf("unknown repo manager type")
	}
}

func (c *AppConfig) randomFactory() (ports.RandomSourceFactory, error) {
	if c.rf != nil {
		return c.rf, nil
	}

	rf, err := phrase_seeded.NewRandomSourceFactory(c.RandomSalt)
	if err != nil {
		return nil, err
	}
	c.rf = rf
	return c.rf, nil
}

func (c *AppConfig) backupService() *application.BackupService {
	if c.backupSvc != nil {
		return c.backupSvc
	}

	rm, _ := c.repoManager()
	rf, _ := c.randomFactory()
	c.backupSvc = application.NewBackupService(
		rm, rf, c.PhraseLength, c.WordGroupSize, c.SessionTTL,
	)
	return c.backupSvc
}

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}
