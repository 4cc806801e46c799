package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateTLSMode covers mode dispatch plus the per-mode certificate rules
func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:        "disabled mode",
			tls:         TLSConfig{Mode: "disabled"},
			expectError: false,
		},
		{
			name: "server mode with files",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: false,
		},
		{
			name: "server mode with content",
			tls: TLSConfig{
				Mode:        "server",
				CertContent: "cert-content",
				KeyContent:  "key-content",
			},
			expectError: false,
		},
		{
			name: "server mode mixed sources",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyContent: "key-content",
			},
			expectError: false,
		},
		{
			name:        "server mode missing both",
			tls:         TLSConfig{Mode: "server"},
			expectError: true,
			errorMsg:    "TLS certificate and key are required for server mode",
		},
		{
			name: "server mode missing key",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
			},
			expectError: true,
			errorMsg:    "TLS certificate and key are required for server mode",
		},
		{
			name: "server mode duplicate cert sources",
			tls: TLSConfig{
				Mode:        "server",
				CertFile:    "/path/to/cert.pem",
				CertContent: "cert-content",
				KeyFile:     "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "cannot specify both certFile and certContent",
		},
		{
			name: "server mode duplicate key sources",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				KeyContent: "key-content",
			},
			expectError: true,
			errorMsg:    "cannot specify both keyFile and keyContent",
		},
		{
			name: "mutual mode with files",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
				CAFile:   "/path/to/ca.pem",
			},
			expectError: false,
		},
		{
			name: "mutual mode with content",
			tls: TLSConfig{
				Mode:        "mutual",
				CertContent: "cert-content",
				KeyContent:  "key-content",
				CAContent:   "ca-content",
			},
			expectError: false,
		},
		{
			name: "mutual mode missing CA",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "CA certificate is required for mutual TLS mode",
		},
		{
			name: "mutual mode duplicate CA sources",
			tls: TLSConfig{
				Mode:      "mutual",
				CertFile:  "/path/to/cert.pem",
				KeyFile:   "/path/to/key.pem",
				CAFile:    "/path/to/ca.pem",
				CAContent: "ca-content",
			},
			expectError: true,
			errorMsg:    "cannot specify both caFile and caContent",
		},
		{
			name: "mutual mode invalid client auth policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         "/path/to/cert.pem",
				KeyFile:          "/path/to/key.pem",
				CAFile:           "/path/to/ca.pem",
				ClientAuthPolicy: "trust-everyone",
			},
			expectError: true,
			errorMsg:    "invalid clientAuthPolicy: trust-everyone",
		},
		{
			name:        "unknown mode",
			tls:         TLSConfig{Mode: "maybe"},
			expectError: true,
			errorMsg:    "invalid TLS mode: maybe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSMode(tt.tls)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateClientAuthPolicy(t *testing.T) {
	for _, policy := range []string{"require", "request", "verify", ""} {
		assert.NoError(t, validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: policy}), "policy %q should be accepted", policy)
	}

	err := validateClientAuthPolicy(TLSConfig{ClientAuthPolicy: "optional"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be 'require', 'request', or 'verify'")
}

func TestValidateTLSVersion(t *testing.T) {
	for _, version := range []string{"", "1.2", "1.3"} {
		assert.NoError(t, validateTLSVersion(TLSConfig{MinVersion: version}), "version %q should be accepted", version)
	}

	for _, version := range []string{"1.0", "1.1", "ssl3", "latest"} {
		err := validateTLSVersion(TLSConfig{MinVersion: version})
		assert.Error(t, err, "version %q should be rejected", version)
		assert.Contains(t, err.Error(), "invalid TLS minVersion")
	}
}

// TestValidateTLSConfig exercises the exported entry point end to end
func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:        "disabled",
			tls:         TLSConfig{Mode: "disabled"},
			expectError: false,
		},
		{
			name: "server mode full config",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.2",
			},
			expectError: false,
		},
		{
			name: "mutual mode full config",
			tls: TLSConfig{
				Mode:             "mutual",
				CertContent:      "cert-content",
				KeyContent:       "key-content",
				CAContent:        "ca-content",
				ClientAuthPolicy: "require",
				MinVersion:       "1.3",
			},
			expectError: false,
		},
		{
			name: "bad mode wins over valid certs",
			tls: TLSConfig{
				Mode:     "plaintext",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "invalid TLS mode: plaintext",
		},
		{
			name: "valid mode bad version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.0",
			},
			expectError: true,
			errorMsg:    "invalid TLS minVersion: 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
