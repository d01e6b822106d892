package config

import (
	"os"
	"strconv"

	"github.com/AnyUserName/imgsel-cli/internal/policy"
)

// Environment keys. The image path keys keep the names used by earlier
// versions of the tool.
const (
	EnvImageA        = "ENV_IMG_NAME_A"
	EnvImageB        = "ENV_IMG_NAME_B"
	EnvOutput        = "ENV_O_IMG_NAME"
	EnvPolicy        = "IMGSEL_POLICY"
	EnvWorkers       = "IMGSEL_WORKERS"
	EnvSelectWorkers = "IMGSEL_SELECT_WORKERS"
	EnvTraceExporter = "IMGSEL_TRACE_EXPORTER"
	EnvOTLPEndpoint  = "IMGSEL_OTLP_ENDPOINT"
	EnvOTLPInsecure  = "IMGSEL_OTLP_INSECURE"
)

type Config struct {
	Compose ComposeConfig
	Trace   TraceConfig
}

type ComposeConfig struct {
	ImageA        string
	ImageB        string
	Output        string
	Policy        string
	Workers       int // concurrent pairs in directory mode, 0 = NumCPU
	SelectWorkers int // row bands per composite
}

type TraceConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

func Load() Config {
	return Config{
		Compose: ComposeConfig{
			ImageA:        env(EnvImageA, ""),
			ImageB:        env(EnvImageB, ""),
			Output:        env(EnvOutput, ""),
			Policy:        env(EnvPolicy, policy.DefaultName),
			Workers:       envInt(EnvWorkers, 0),
			SelectWorkers: envInt(EnvSelectWorkers, 1),
		},
		Trace: TraceConfig{
			Exporter:     env(EnvTraceExporter, "none"),
			OTLPEndpoint: env(EnvOTLPEndpoint, ""),
			OTLPInsecure: envBool(EnvOTLPInsecure, false),
		},
	}
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
