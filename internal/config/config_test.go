package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		baseURL      string
		stateFile    string
		email        string
		password     string
		pollInterval time.Duration
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				baseURL:      "http://localhost:8000/api/v1",
				stateFile:    "coffeeadmin.json",
				pollInterval: 5 * time.Second,
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"API_BASE_URL":   "http://backend:9000/api/v1",
				"STATE_FILE":     "/tmp/state.json",
				"ADMIN_EMAIL":    "admin@coffee.shop",
				"ADMIN_PASSWORD": "secret",
				"POLL_INTERVAL":  "10s",
			},
			flags: []string{},
			want: want{
				baseURL:      "http://backend:9000/api/v1",
				stateFile:    "/tmp/state.json",
				email:        "admin@coffee.shop",
				password:     "secret",
				pollInterval: 10 * time.Second,
			},
		},
		{
			name: "flags only",
			env:  map[string]string{},
			flags: []string{
				"-b", "http://flag:7000/api/v1",
				"-f", "flag-state.json",
				"-u", "flag@coffee.shop",
				"-p", "flagpass",
				"-i", "3s",
			},
			want: want{
				baseURL:      "http://flag:7000/api/v1",
				stateFile:    "flag-state.json",
				email:        "flag@coffee.shop",
				password:     "flagpass",
				pollInterval: 3 * time.Second,
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"API_BASE_URL": "http://env:9000/api/v1",
				"ADMIN_EMAIL":  "env@coffee.shop",
			},
			flags: []string{
				"-b", "http://flag:7000/api/v1",
				"-u", "flag@coffee.shop",
				"-p", "flagpass",
			},
			want: want{
				baseURL:      "http://env:9000/api/v1",
				stateFile:    "coffeeadmin.json",
				email:        "env@coffee.shop",
				password:     "flagpass",
				pollInterval: 5 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			os.Args = append([]string{"test"}, tt.flags...)

			cfg, err := Parse()
			require.NoError(t, err)

			assert.Equal(t, tt.want.baseURL, cfg.BaseURL)
			assert.Equal(t, tt.want.stateFile, cfg.StateFile)
			assert.Equal(t, tt.want.email, cfg.Email)
			assert.Equal(t, tt.want.password, cfg.Password)
			assert.Equal(t, tt.want.pollInterval, cfg.PollInterval)
		})
	}
}
