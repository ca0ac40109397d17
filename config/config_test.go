package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "secret")

	cfg, err := Load("staffbot", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "secret" || cfg.GuildID != "" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DBPath != "staffbot.db" {
		t.Errorf("DBPath = %q, want staffbot.db", cfg.DBPath)
	}
	if cfg.InactiveSweep != 10*time.Second || cfg.StrikeSweep != 30*time.Second {
		t.Errorf("sweeps = %v, %v", cfg.InactiveSweep, cfg.StrikeSweep)
	}
	if cfg.Debug || cfg.ImportPath != "" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "from-env")
	t.Setenv("STAFFBOT_DB_PATH", "env.db")
	t.Setenv("STAFFBOT_STRIKE_SWEEP", "1m")

	cfg, err := Load("staffbot", []string{"--token", "from-flag", "--guild", "g1", "--debug", "--import", "database.yml"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Token != "from-flag" || cfg.GuildID != "g1" || !cfg.Debug || cfg.ImportPath != "database.yml" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DBPath != "env.db" {
		t.Errorf("DBPath = %q, want env.db", cfg.DBPath)
	}
	if cfg.StrikeSweep != time.Minute {
		t.Errorf("StrikeSweep = %v, want 1m", cfg.StrikeSweep)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
		want string
	}{
		{
			name: "missing token",
			want: "bot token",
		},
		{
			name: "bad interval",
			env:  map[string]string{"DISCORD_BOT_TOKEN": "x", "STAFFBOT_INACTIVE_SWEEP": "soon"},
			want: "parse env:",
		},
		{
			name: "non-positive interval",
			env:  map[string]string{"DISCORD_BOT_TOKEN": "x", "STAFFBOT_STRIKE_SWEEP": "0s"},
			want: "strike sweep interval",
		},
		{
			name: "unknown flag",
			env:  map[string]string{"DISCORD_BOT_TOKEN": "x"},
			args: []string{"--dbPath", "x.db"},
			want: "unknown flag",
		},
		{
			name: "stray argument",
			env:  map[string]string{"DISCORD_BOT_TOKEN": "x"},
			args: []string{"run"},
			want: "unexpected argument",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_BOT_TOKEN", "")
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load("staffbot", tt.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "x")

	if _, err := Load("staffbot", []string{"--help"}); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("Load(--help) = %v, want pflag.ErrHelp", err)
	}
}
