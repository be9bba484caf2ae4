// Copyright (c) 2026 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/caarlos0/env"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-trio-queue/pkg/constants"
)

var (
	availableStoreDrivers = []string{constants.StoreDriverMemory, constants.StoreDriverSQLite}
	availableArchiveRules = []string{constants.ArchiveRuleRecorded, constants.ArchiveRuleSymmetric}
)

type Config struct {
	LogLevel                  string `env:"LOG_LEVEL"                    envDefault:"info"           envDocs:"logrus level name"`
	StoreDriver               string `env:"MEMBERSHIP_STORE_DRIVER"      envDefault:"memory"         envDocs:"membership store backend, memory or sqlite"`
	SQLitePath                string `env:"MEMBERSHIP_SQLITE_PATH"       envDefault:"trio-queue.db"  envDocs:"sqlite database file used when MEMBERSHIP_STORE_DRIVER is sqlite"`
	ArchiveSettlementRule     string `env:"ARCHIVE_SETTLEMENT_RULE"      envDefault:"recorded"       envDocs:"reward rule for archived matches: recorded uses the match mode, symmetric rewards everyone"`
	RequeueOnFormationFailure bool   `env:"REQUEUE_ON_FORMATION_FAILURE" envDefault:"false"          envDocs:"put drafted participants back at the head of their lanes when forming the match fails"`
	SymmetricReward           int    `env:"SYMMETRIC_REWARD"             envDefault:"1"              envDocs:"reputation granted to every member of a symmetric match"`
	AsymmetricReward          int    `env:"ASYMMETRIC_REWARD"            envDefault:"2"              envDocs:"reputation granted to the third slot of an asymmetric match"`
	ReportPenalty             int    `env:"REPORT_PENALTY"               envDefault:"1"              envDocs:"reputation removed from each reported participant"`
	ReportReasonMaxLength     int    `env:"REPORT_REASON_MAX_LENGTH"     envDefault:"1024"           envDocs:"maximum length of a report reason"`
	ServiceName               string `env:"OTEL_SERVICE_NAME"            envDefault:"trio-queue"     envDocs:"service name attached to exported spans"`
	ZipkinEndpoint            string `env:"OTEL_EXPORTER_ZIPKIN_ENDPOINT" envDocs:"zipkin collector url, spans are not exported when empty"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		LogLevel:              "info",
		StoreDriver:           constants.StoreDriverMemory,
		SQLitePath:            "trio-queue.db",
		ArchiveSettlementRule: constants.ArchiveRuleRecorded,
		SymmetricReward:       1,
		AsymmetricReward:      2,
		ReportPenalty:         1,
		ReportReasonMaxLength: 1024,
		ServiceName:           "trio-queue",
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(availableStoreDrivers, c.StoreDriver) {
		return fmt.Errorf("membership store driver should be one of %v", availableStoreDrivers)
	}
	if !slices.Contains(availableArchiveRules, c.ArchiveSettlementRule) {
		return fmt.Errorf("archive settlement rule should be one of %v", availableArchiveRules)
	}
	if c.StoreDriver == constants.StoreDriverSQLite && c.SQLitePath == "" {
		return errors.New("sqlite path is required for the sqlite store driver")
	}
	if c.SymmetricReward < 0 || c.AsymmetricReward < 0 {
		return errors.New("rewards cannot be minus")
	}
	if c.ReportPenalty < 0 {
		return errors.New("report penalty cannot be minus")
	}
	if c.ReportReasonMaxLength <= 0 || c.ReportReasonMaxLength > constants.ReportReasonLengthLimit {
		return fmt.Errorf("report reason max length should be between 1 and %d", constants.ReportReasonLengthLimit)
	}
	return nil
}

// ApplyLogLevel sets the logrus standard logger level from the config.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, keeping %s", c.LogLevel, logrus.GetLevel())
		return
	}
	logrus.SetLevel(level)
}
