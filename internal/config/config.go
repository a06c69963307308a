package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	BackendBaseURL    string        `yaml:"backend_base_url"`
	Port              string        `yaml:"port"`
	LogLevel          string        `yaml:"log_level"`
	LogJSON           bool          `yaml:"log_json"`
	SecureCookies     bool          `yaml:"secure_cookies"`
	AllowedOrigins    []string      `yaml:"allowed_origins"`
	MaxAttachments    int           `yaml:"max_attachments"`      // accepted-list ceiling per draft
	MaxAttachmentSize int64         `yaml:"max_attachment_size"`  // per-file limit, bytes
	SpoolDir          string        `yaml:"spool_dir"`            // where accepted files wait for submission
	DraftTTL          time.Duration `yaml:"draft_ttl"`            // abandoned drafts are dropped after this
	RowsPerPage       int           `yaml:"rows_per_page"`        // default admin table page size
	SessionTTL        time.Duration `yaml:"session_ttl"`          // accessToken cookie lifetime
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
}

func (c *Config) JwtKey() string {
	return c.private.JwtKey
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.applyDefaults()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	if private.JwtKey == "" {
		panic("jwt_key is required in private.yaml")
	}

	return &Config{public, private}
}

func (p *Public) applyDefaults() {
	if p.Port == "" {
		p.Port = "8081"
	}
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.MaxAttachments == 0 {
		p.MaxAttachments = 10
	}
	if p.MaxAttachmentSize == 0 {
		p.MaxAttachmentSize = 100 << 20
	}
	if p.SpoolDir == "" {
		p.SpoolDir = os.TempDir()
	}
	if p.DraftTTL == 0 {
		p.DraftTTL = 2 * time.Hour
	}
	if p.RowsPerPage == 0 {
		p.RowsPerPage = 5
	}
	if p.SessionTTL == 0 {
		p.SessionTTL = 24 * time.Hour
	}
}
