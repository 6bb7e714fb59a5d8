package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	Analysis AnalysisConfig
	Session  SessionConfig
	Lead     LeadConfig
	Notify   NotifyConfig
	Admin    AdminConfig
	Unlock   UnlockConfig
	Archive  ArchiveConfig

	// FlowPath optionally points at a YAML flow definition overriding the
	// built-in ten step wizard.
	FlowPath string
}

type AnalysisConfig struct {
	ReportModel      string
	RelevanceModel   string
	RelevanceEnabled bool
	RequestTimeout   time.Duration
}

type SessionConfig struct {
	MaxSessions int
	TTL         time.Duration
}

type LeadConfig struct {
	Path  string
	PgDSN string
}

type NotifyConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
}

type AdminConfig struct {
	ID       string
	Password string
}

type UnlockConfig struct {
	ChannelURL string
}

type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port: *port,
		Env:  env,
		Analysis: AnalysisConfig{
			ReportModel:      firstNonEmpty(strings.TrimSpace(os.Getenv("ANALYSIS_MODEL")), "gemini-2.5-flash"),
			RelevanceModel:   firstNonEmpty(strings.TrimSpace(os.Getenv("RELEVANCE_MODEL")), "gemini-2.5-flash"),
			RelevanceEnabled: envBool("RELEVANCE_GATE_ENABLED", true),
			RequestTimeout:   envDuration("ANALYSIS_TIMEOUT", 90*time.Second),
		},
		Session: SessionConfig{
			MaxSessions: envInt("SESSION_MAX", 4096),
			TTL:         envDuration("SESSION_TTL", 2*time.Hour),
		},
		Lead: LeadConfig{
			Path:  firstNonEmpty(strings.TrimSpace(os.Getenv("LEAD_STORE_PATH")), "tmp/leads.json"),
			PgDSN: strings.TrimSpace(os.Getenv("LEAD_STORE_PG_DSN")),
		},
		Notify: NotifyConfig{
			Endpoint:   firstNonEmpty(strings.TrimSpace(os.Getenv("EMAILJS_ENDPOINT")), "https://api.emailjs.com"),
			ServiceID:  strings.TrimSpace(os.Getenv("EMAILJS_SERVICE_ID")),
			TemplateID: strings.TrimSpace(os.Getenv("EMAILJS_TEMPLATE_ID")),
			PublicKey:  strings.TrimSpace(os.Getenv("EMAILJS_PUBLIC_KEY")),
		},
		Admin: AdminConfig{
			ID:       firstNonEmpty(strings.TrimSpace(os.Getenv("ADMIN_ID")), "admin"),
			Password: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		},
		Unlock: UnlockConfig{
			ChannelURL: firstNonEmpty(strings.TrimSpace(os.Getenv("CHANNEL_URL")), "http://pf.kakao.com/_CWzRX"),
		},
		Archive:  loadArchiveConfig(),
		FlowPath: strings.TrimSpace(os.Getenv("WIZARD_FLOW_PATH")),
	}, nil
}

func loadArchiveConfig() ArchiveConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARCHIVE_S3_ENDPOINT"))
	return ArchiveConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARCHIVE_S3_BUCKET")), "leakbox-reports"),
		UseSSL:    envBool("ARCHIVE_S3_USE_SSL", false),
	}
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
