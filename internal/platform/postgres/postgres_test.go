package postgres

import (
	"testing"
	"time"
)

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if cfg.MaxConns != 2 || cfg.PingTimeout != 2*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestConfigFromEnvRejectsZeroConns(t *testing.T) {
	t.Setenv("PIPELINE_DATABASE_MAX_CONNS", "0")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("ConfigFromEnv() expected error for zero connections")
	}
}

func TestValidateRejectsBadURL(t *testing.T) {
	cfg := Config{URL: "postgres://localhost:notaport/eqsat", PingTimeout: time.Second, MaxConns: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() expected error for unparsable URL")
	}
}

func TestConnConfigApplicationName(t *testing.T) {
	cc, err := connConfig(Config{URL: "postgres://u:p@localhost:5432/eqsat"})
	if err != nil {
		t.Fatalf("connConfig() err=%v", err)
	}
	if got := cc.RuntimeParams["application_name"]; got != ApplicationName {
		t.Fatalf("application_name=%q", got)
	}

	cc, err = connConfig(Config{URL: "postgres://u:p@localhost:5432/eqsat?application_name=nightly"})
	if err != nil {
		t.Fatalf("connConfig() err=%v", err)
	}
	if got := cc.RuntimeParams["application_name"]; got != "nightly" {
		t.Fatalf("application_name=%q, want the URL's value", got)
	}
}
