package config

import (
	"os"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:       HTTPConfig{Port: 8080},
		Database:   DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Search:     SearchConfig{Addresses: []string{"http://localhost:9200"}},
		Generation: GenerationConfig{APIKey: "test-key"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing http.port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database.addrs")
	}
}

func TestValidate_MissingSearchAddresses(t *testing.T) {
	cfg := validConfig()
	cfg.Search.Addresses = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing search.addresses")
	}
}

func TestValidate_MissingGenerationKey(t *testing.T) {
	cfg := validConfig()
	cfg.Generation.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing generation.api_key")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Embedding.TimeoutSec != 30 {
		t.Errorf("embedding timeout default = %d, want 30", cfg.Embedding.TimeoutSec)
	}
	if cfg.Embedding.BaseURL != "http://localhost:11434" {
		t.Errorf("embedding base_url default = %q", cfg.Embedding.BaseURL)
	}
	if cfg.Search.Index != "customer_contracts" {
		t.Errorf("search index default = %q", cfg.Search.Index)
	}
	if cfg.RateLimit.MaxRequests != 100 || cfg.RateLimit.WindowSec != 60 {
		t.Errorf("rate limit defaults = %d/%d, want 100/60",
			cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec)
	}
	if cfg.Cache.TTLSec != 3600 {
		t.Errorf("cache ttl default = %d, want 3600", cfg.Cache.TTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("SLAQUERY_TEST_KEY", "secret")
	defer os.Unsetenv("SLAQUERY_TEST_KEY")

	in := []byte("api_key: ${SLAQUERY_TEST_KEY}\nmodel: ${SLAQUERY_TEST_MODEL:-gpt-4o-mini}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nmodel: gpt-4o-mini\n"
	if out != want {
		t.Errorf("expandEnvVars = %q, want %q", out, want)
	}
}
