package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/programme-lv/cardiorisk/internal/exchange"
	"github.com/programme-lv/cardiorisk/internal/vitals"
)

// Variable names
const (
	EnvRoot          = "CARDIORISK_ROOT"
	EnvClient        = "CARDIORISK_CLIENT"
	EnvResultPath    = "CARDIORISK_RESULT_PATH"
	EnvSharedDir     = "CARDIORISK_SHARED_DIR"
	EnvTimeout       = "CARDIORISK_TIMEOUT"
	EnvRangePolicy   = "CARDIORISK_RANGE_POLICY"
	EnvDataset       = "CARDIORISK_DATASET"
	EnvNatsURL       = "CARDIORISK_NATS_URL"
	EnvNatsSubject   = "CARDIORISK_NATS_SUBJECT"
	EnvStatusSubject = "CARDIORISK_STATUS_SUBJECT"
	EnvResSqsURL     = "CARDIORISK_RES_SQS_URL"
	EnvAwsRegion     = "CARDIORISK_AWS_REGION"
	EnvLogLevel      = "CARDIORISK_LOG_LEVEL"
)

type EnvConfig struct {
	Root       string
	Client     string
	ResultPath string
	SharedDir  string
	Timeout    time.Duration
	Policy     vitals.Policy
	Dataset    string

	NatsURL       string
	NatsSubject   string
	StatusSubject string
	ResSqsURL     string
	AwsRegion     string

	LogLevel slog.Level
}

func Defaults() *EnvConfig {
	return &EnvConfig{
		Root:          ".",
		Client:        "x64/Release/Client_Hospital",
		ResultPath:    exchange.DefaultResultPath,
		SharedDir:     exchange.DefaultSharedDir,
		Timeout:       30 * time.Second,
		Policy:        vitals.Reject,
		Dataset:       "Server_AI/heart_cleveland.csv",
		NatsURL:       "nats://127.0.0.1:4222",
		NatsSubject:   "cardiorisk.diagnose",
		StatusSubject: "cardiorisk.status",
		AwsRegion:     "eu-central-1",
		LogLevel:      slog.LevelInfo,
	}
}

// ReadEnvConfig loads the given .env files (".env" when none are given)
// into the process environment and reads the configuration from it. A
// missing .env file is not an error.
func ReadEnvConfig(envFiles ...string) (*EnvConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the configuration from a variable lookup function,
// falling back to Defaults for unset variables.
func FromLookup(lookup func(string) (string, bool)) (*EnvConfig, error) {
	c := Defaults()
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvRoot, &c.Root)
	str(EnvClient, &c.Client)
	str(EnvResultPath, &c.ResultPath)
	str(EnvSharedDir, &c.SharedDir)
	str(EnvDataset, &c.Dataset)
	str(EnvNatsURL, &c.NatsURL)
	str(EnvNatsSubject, &c.NatsSubject)
	str(EnvStatusSubject, &c.StatusSubject)
	str(EnvResSqsURL, &c.ResSqsURL)
	str(EnvAwsRegion, &c.AwsRegion)

	var raw string
	if str(EnvTimeout, &raw); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration, got %q", EnvTimeout, raw)
		}
		c.Timeout = d
	}

	raw = ""
	str(EnvRangePolicy, &raw)
	p, err := vitals.ParsePolicy(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvRangePolicy, err)
	}
	c.Policy = p

	raw = ""
	if str(EnvLogLevel, &raw); raw != "" {
		lvl, err := ParseLevel(raw)
		if err != nil {
			return nil, err
		}
		c.LogLevel = lvl
	}
	return c, nil
}

// Layout resolves the exchange artifacts under the configured root.
func (c *EnvConfig) Layout() exchange.Layout {
	l := exchange.NewLayout(c.Root)
	l.SharedDir = c.SharedDir
	l.ResultPath = c.ResultPath
	return l
}

func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return lvl, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
