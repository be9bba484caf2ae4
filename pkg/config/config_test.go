// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-trio-queue/pkg/constants"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("MEMBERSHIP_STORE_DRIVER", "sqlite")
	t.Setenv("MEMBERSHIP_SQLITE_PATH", "/tmp/queue.db")
	t.Setenv("ARCHIVE_SETTLEMENT_RULE", "symmetric")
	t.Setenv("REQUEUE_ON_FORMATION_FAILURE", "true")
	t.Setenv("ASYMMETRIC_REWARD", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, constants.StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/queue.db", cfg.SQLitePath)
	assert.Equal(t, constants.ArchiveRuleSymmetric, cfg.ArchiveSettlementRule)
	assert.True(t, cfg.RequeueOnFormationFailure)
	assert.Equal(t, 3, cfg.AsymmetricReward)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }, true},
		{"unknown archive rule", func(c *Config) { c.ArchiveSettlementRule = "double" }, true},
		{"sqlite without path", func(c *Config) { c.StoreDriver = constants.StoreDriverSQLite; c.SQLitePath = "" }, true},
		{"negative reward", func(c *Config) { c.SymmetricReward = -1 }, true},
		{"negative penalty", func(c *Config) { c.ReportPenalty = -2 }, true},
		{"zero reason length", func(c *Config) { c.ReportReasonMaxLength = 0 }, true},
		{"reason length at limit", func(c *Config) { c.ReportReasonMaxLength = constants.ReportReasonLengthLimit }, false},
		{"reason length above limit", func(c *Config) { c.ReportReasonMaxLength = constants.ReportReasonLengthLimit + 1 }, true},
		{"zero rewards are allowed", func(c *Config) { c.SymmetricReward = 0; c.AsymmetricReward = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyLogLevel(t *testing.T) {
	previous := logrus.GetLevel()
	t.Cleanup(func() { logrus.SetLevel(previous) })

	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.ApplyLogLevel()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	cfg.LogLevel = "loud"
	cfg.ApplyLogLevel()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
