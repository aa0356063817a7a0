package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`
	RabbitMQ struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"rabbitmq"`
	Store struct {
		// Driver is one of memory, postgres, mongo.
		Driver     string `yaml:"driver"`
		Collection string `yaml:"collection"`
	} `yaml:"store"`
	Catalog struct {
		// Source is one of embedded, file, postgres.
		Source string `yaml:"source"`
		Path   string `yaml:"path"`
		Name   string `yaml:"name"`
	} `yaml:"catalog"`
	Contact struct {
		BaseURL string  `yaml:"base_url"`
		APIKey  string  `yaml:"api_key"`
		ListIDs []int64 `yaml:"list_ids"`
		Timeout string  `yaml:"timeout"`
	} `yaml:"contact"`
}

// Load reads YAML config from path, then applies environment overrides and defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set("BREVO_API_KEY", &c.Contact.APIKey)
	set("SUBMISSIONS_COLLECTION", &c.Store.Collection)
	set("REDIS_ADDR", &c.Redis.Addr)
	set("POSTGRES_URL", &c.Postgres.URL)
	set("MONGO_URI", &c.Mongo.URI)
	set("RABBITMQ_URI", &c.RabbitMQ.URL)

	if raw, ok := lookup("CONTACT_LIST_ID"); ok && raw != "" {
		ids, err := ParseListIDs(raw)
		if err != nil {
			return err
		}
		c.Contact.ListIDs = ids
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.Collection == "" {
		c.Store.Collection = "submissions"
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = "embedded"
	}
	if c.Catalog.Name == "" {
		c.Catalog.Name = "default"
	}
	if len(c.Contact.ListIDs) == 0 {
		c.Contact.ListIDs = []int64{5}
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "refonte"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "refonte.events"
	}
}

// ParseListIDs parses a comma-separated list of positive list ids.
func ParseListIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.Errorf("invalid list id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
