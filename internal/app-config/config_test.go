package appconfig_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	appconfig "github.com/vulpemventures/seedcheck/internal/app-config"
)

func TestAppConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := &appconfig.AppConfig{
			PhraseLength:    24,
			WordGroupSize:   3,
			SessionTTL:      time.Minute,
			RepoManagerType: "inmemory",
		}
		require.NoError(t, cfg.Validate())
		defer cfg.RepoManager().Close()

		require.NotNil(t, cfg.RepoManager())
		require.NotNil(t, cfg.RandomSourceFactory())
		svc := cfg.BackupService()
		require.NotNil(t, svc)
		require.Equal(t, svc, cfg.BackupService())

		info := cfg.BuildInfo()
		require.Equal(t, "dev", info.Version)
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  *appconfig.AppConfig
		}{
			{
				name: "missing_phrase_length",
				cfg: &appconfig.AppConfig{
					WordGroupSize: 3, SessionTTL: time.Minute,
					RepoManagerType: "inmemory",
				},
			},
			{
				name: "not_multiple_of_group_size",
				cfg: &appconfig.AppConfig{
					PhraseLength: 24, WordGroupSize: 5, SessionTTL: time.Minute,
					RepoManagerType: "inmemory",
				},
			},
			{
				name: "missing_ttl",
				cfg: &appconfig.AppConfig{
					PhraseLength: 24, WordGroupSize: 3,
					RepoManagerType: "inmemory",
				},
			},
			{
				name: "unknown_repo_manager",
				cfg: &appconfig.AppConfig{
					PhraseLength: 24, WordGroupSize: 3, SessionTTL: time.Minute,
					RepoManagerType: "mysql",
				},
			},
			{
				name: "missing_badger_datadir",
				cfg: &appconfig.AppConfig{
					PhraseLength: 24, WordGroupSize: 3, SessionTTL: time.Minute,
					RepoManagerType: "badger",
				},
			},
			{
				name: "invalid_salt",
				cfg: &appconfig.AppConfig{
					PhraseLength: 24, WordGroupSize: 3, SessionTTL: time.Minute,
					RandomSalt: []byte{1, 2, 3}, RepoManagerType: "inmemory",
				},
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				require.Error(t, tt.cfg.Validate())
			})
		}
	})
}
