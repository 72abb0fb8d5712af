package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/overmind/internal/platform/logging"
)

// Config stores runtime configuration for the importer.
type Config struct {
	AppEnv                   string
	ServiceName              string
	ServiceVersion           string
	DBURL                    string
	DBBinaryParameters       bool
	DBMaxOpenConns           int `validate:"gte=1"`
	SourceDir                string
	ArchiveDir               string
	AliasTablePath           string
	FailureLogPath           string `validate:"required"`
	BarcodeReportPath        string `validate:"required"`
	WorkerCount              int    `validate:"gte=1,lte=1024"`
	DecoderCommand           string `validate:"required"`
	DecoderLoadLevel         int    `validate:"gte=0,lte=4"`
	LadderSoftFail           bool
	LadderCacheTTL           time.Duration `validate:"gt=0"`
	BNetEnabled              bool
	BNetBaseURL              string `validate:"required,url"`
	BNetTokenURL             string `validate:"required,url"`
	BNetClientID             string
	BNetClientSecret         string
	BNetTimeout              time.Duration `validate:"gt=0"`
	BNetMaxRetries           int           `validate:"gte=0"`
	BNetRateLimitWait        time.Duration `validate:"gt=0"`
	BNetTransientWait        time.Duration `validate:"gt=0"`
	BNetCircuitEnabled       bool
	BNetCircuitFailureCount  int           `validate:"gte=1"`
	BNetCircuitOpenTimeout   time.Duration `validate:"gt=0"`
	BNetCircuitHalfOpenMax   int           `validate:"gte=1"`
	DryRun                   bool
	PprofEnabled             bool
	PprofAddr                string
	UptraceEnabled           bool
	UptraceDSN               string
	PyroscopeEnabled         bool
	PyroscopeServerAddress   string
	PyroscopeAppName         string
	PyroscopeAuthToken       string
	PyroscopeBasicAuthUser   string
	PyroscopeBasicAuthPasswd string
	PyroscopeUploadRate      time.Duration
	LogLevel                 logging.Level
	LogFormat                logging.Format
}

// Load parses and validates the configuration.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads the optional .env file (ENV_FILE overrides its path) and then the process environment
// without validating the result. Variables already set in the environment win over the file.
func Parse() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                   appEnv,
		ServiceName:              getEnv("APP_SERVICE_NAME", "overmind-importer"),
		ServiceVersion:           getEnv("APP_SERVICE_VERSION", "dev"),
		DBURL:                    strings.TrimSpace(getEnv("DB_URL", "")),
		SourceDir:                strings.TrimSpace(getEnv("REPLAY_SOURCE_DIR", "")),
		ArchiveDir:               strings.TrimSpace(getEnv("ARCHIVE_DIR", "")),
		AliasTablePath:           strings.TrimSpace(getEnv("ALIAS_TABLE_PATH", "")),
		FailureLogPath:           strings.TrimSpace(getEnv("FAILURE_LOG_PATH", "not_imported.txt")),
		BarcodeReportPath:        strings.TrimSpace(getEnv("BARCODE_REPORT_PATH", "_barcode_report.json")),
		DecoderCommand:           strings.TrimSpace(getEnv("DECODER_COMMAND", "sc2decode")),
		BNetBaseURL:              strings.TrimSpace(getEnv("BNET_BASE_URL", "https://us.api.blizzard.com")),
		BNetTokenURL:             strings.TrimSpace(getEnv("BNET_TOKEN_URL", "https://us.battle.net/oauth/token")),
		BNetClientID:             strings.TrimSpace(getEnv("BNET_API_CLIENT_ID", "")),
		BNetClientSecret:         strings.TrimSpace(getEnv("BNET_API_CLIENT_SECRET", "")),
		PprofAddr:                strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		PyroscopeAuthToken:       getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:   getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPasswd: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		LogLevel:                 parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{"DB_BINARY_PARAMETERS", "false", &cfg.DBBinaryParameters},
		{"LADDER_SOFT_FAIL", "true", &cfg.LadderSoftFail},
		{"BNET_ENABLED", "true", &cfg.BNetEnabled},
		{"BNET_CIRCUIT_ENABLED", "true", &cfg.BNetCircuitEnabled},
		{"DRY_RUN", "false", &cfg.DryRun},
		{"PPROF_ENABLED", "false", &cfg.PprofEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
	}
	for _, item := range bools {
		v, err := strconv.ParseBool(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = v
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"DB_MAX_OPEN_CONNS", 40, &cfg.DBMaxOpenConns},
		{"WORKER_COUNT", 32, &cfg.WorkerCount},
		{"DECODER_LOAD_LEVEL", 2, &cfg.DecoderLoadLevel},
		{"BNET_MAX_RETRIES", 10, &cfg.BNetMaxRetries},
		{"BNET_CIRCUIT_FAILURE_COUNT", 8, &cfg.BNetCircuitFailureCount},
		{"BNET_CIRCUIT_HALF_OPEN_MAX_REQ", 1, &cfg.BNetCircuitHalfOpenMax},
	}
	for _, item := range ints {
		v, err := getEnvAsInt(item.key, item.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = v
	}

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"LADDER_CACHE_TTL", "30m", &cfg.LadderCacheTTL},
		{"BNET_TIMEOUT", "10s", &cfg.BNetTimeout},
		{"BNET_RATE_LIMIT_WAIT", "5s", &cfg.BNetRateLimitWait},
		{"BNET_TRANSIENT_WAIT", "1s", &cfg.BNetTransientWait},
		{"BNET_CIRCUIT_OPEN_TIMEOUT", "30s", &cfg.BNetCircuitOpenTimeout},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, item := range durations {
		v, err := time.ParseDuration(getEnv(item.key, item.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", item.key, err)
		}
		*item.dst = v
	}

	cfg.LogFormat, err = logging.ParseFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatAuto)))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_FORMAT: %w", err)
	}

	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))

	return cfg, nil
}

var structValidator = validator.New()

// Validate checks cross-field rules. It is re-run after command-line overrides.
func (c Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config %s: must satisfy %s", fe.Field(), strings.TrimSpace(fe.Tag()+" "+fe.Param()))
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if !c.DryRun && c.DBURL == "" {
		return fmt.Errorf("DB_URL is required unless DRY_RUN=true")
	}
	if c.BNetEnabled && (c.BNetClientID == "" || c.BNetClientSecret == "") {
		return fmt.Errorf("BNET_API_CLIENT_ID and BNET_API_CLIENT_SECRET are required when BNET_ENABLED=true")
	}
	if c.UptraceEnabled && c.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if c.PyroscopeEnabled && c.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if c.PprofEnabled && c.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	return nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return out, nil
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
