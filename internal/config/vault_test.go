package config

import (
	"os"
	"path/filepath"
	"testing"

	"resumelens/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *errors.Logger {
	logger, _ := errors.New("debug")
	return logger
}

func TestParseVersionValue(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		expected    int64
		expectError bool
	}{
		{
			name:     "int64 value",
			input:    int64(7),
			expected: 7,
		},
		{
			name:     "float64 value",
			input:    float64(7.0),
			expected: 7,
		},
		{
			name:     "numeric string",
			input:    "7",
			expected: 7,
		},
		{
			name:        "non-numeric string",
			input:       "seven",
			expectError: true,
		},
		{
			name:        "unsupported type",
			input:       []string{"7"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseVersionValue(tt.input, "secret/resumelens")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestParseInt64(t *testing.T) {
	tests := []struct {
		input       string
		expected    int64
		expectError bool
	}{
		{input: "42", expected: 42},
		{input: "-42", expected: -42},
		{input: "0", expected: 0},
		{input: "not-a-number", expectError: true},
		{input: "", expectError: true},
		{input: "42.5", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := parseInt64(tt.input)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	logger := newTestLogger()

	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token"}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file is trimmed", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("config token wins over file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("file-token"), 0600))

		token, err := resolveVaultToken(VaultConfig{Token: "direct-token", TokenFile: tokenFile}, logger)
		assert.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})

	t.Run("whitespace-only token file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "empty-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("   \n  \n"), 0600))

		_, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile}, logger)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestLoadSingleCertificate(t *testing.T) {
	logger := newTestLogger()

	tests := []struct {
		name        string
		data        map[string]any
		expected    int
		expectValue string
	}{
		{
			name: "certificate content present",
			data: map[string]any{
				"cert": "-----BEGIN CERTIFICATE-----\ntest\n-----END CERTIFICATE-----",
			},
			expected:    1,
			expectValue: "-----BEGIN CERTIFICATE-----\ntest\n-----END CERTIFICATE-----",
		},
		{
			name:     "empty content is skipped",
			data:     map[string]any{"cert": ""},
			expected: 0,
		},
		{
			name:     "missing key is skipped",
			data:     map[string]any{"other": "value"},
			expected: 0,
		},
		{
			name:     "non-string value is skipped",
			data:     map[string]any{"cert": 123},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var target string
			result := loadSingleCertificate(&VaultSecret{Data: tt.data}, "cert", &target, "TLS certificate content", logger)

			assert.Equal(t, tt.expected, result)
			assert.Equal(t, tt.expectValue, target)
		})
	}
}

func TestLoadTLSCertificateContent(t *testing.T) {
	logger := newTestLogger()

	t.Run("all three certificates", func(t *testing.T) {
		config := &Config{}
		tlsData := &VaultSecret{
			Data: map[string]any{
				"cert": "cert-content",
				"key":  "key-content",
				"ca":   "ca-content",
			},
		}

		certCount := loadTLSCertificateContent(config, tlsData, logger)

		assert.Equal(t, 3, certCount)
		assert.Equal(t, "cert-content", config.Server.TLS.CertContent)
		assert.Equal(t, "key-content", config.Server.TLS.KeyContent)
		assert.Equal(t, "ca-content", config.Server.TLS.CAContent)
	})

	t.Run("partial data", func(t *testing.T) {
		config := &Config{}
		tlsData := &VaultSecret{
			Data: map[string]any{"cert": "cert-content"},
		}

		certCount := loadTLSCertificateContent(config, tlsData, logger)

		assert.Equal(t, 1, certCount)
		assert.Equal(t, "cert-content", config.Server.TLS.CertContent)
		assert.Empty(t, config.Server.TLS.KeyContent)
		assert.Empty(t, config.Server.TLS.CAContent)
	})
}

func TestValidateTLSDeprecatedFields(t *testing.T) {
	logger := newTestLogger()

	t.Run("content fields are fine", func(t *testing.T) {
		tlsData := &VaultSecret{
			Data: map[string]any{
				"cert": "cert-content",
				"key":  "key-content",
				"ca":   "ca-content",
			},
		}
		assert.NoError(t, validateTLSDeprecatedFields(tlsData, logger))
	})

	for _, field := range []string{"cert_file", "key_file", "ca_file"} {
		t.Run("rejects "+field, func(t *testing.T) {
			tlsData := &VaultSecret{
				Data: map[string]any{field: "/path/on/vault/host"},
			}

			err := validateTLSDeprecatedFields(tlsData, logger)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), field)
			assert.Contains(t, err.Error(), "no longer supported")
		})
	}
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	config := &Config{
		Vault: VaultConfig{Enabled: false},
	}

	err := ApplyVaultSecrets(config, newTestLogger())
	assert.NoError(t, err)
	assert.Empty(t, config.Server.APIKeys)
	assert.Empty(t, config.Backend.APIKey)
}

func TestVaultClientExtractSecretData(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    map[string]any
	}{
		{
			name: "valid KVv2 secret",
			secret: &api.Secret{
				Data: map[string]any{
					"data": map[string]any{
						"api_key": "backend-key",
					},
				},
			},
			expected: map[string]any{"api_key": "backend-key"},
		},
		{
			name: "missing data field",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{},
				},
			},
			expectError: true,
		},
		{
			name: "data field wrong type",
			secret: &api.Secret{
				Data: map[string]any{"data": "not-a-map"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretData(tt.secret, "secret/backend")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestVaultClientExtractSecretVersion(t *testing.T) {
	vc := &VaultClient{logger: newTestLogger()}

	tests := []struct {
		name        string
		secret      *api.Secret
		expectError bool
		expected    int64
	}{
		{
			name: "version as int64",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{"version": int64(3)},
				},
			},
			expected: 3,
		},
		{
			name: "version as float64",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{"version": float64(3)},
				},
			},
			expected: 3,
		},
		{
			name: "missing metadata field",
			secret: &api.Secret{
				Data: map[string]any{
					"data": map[string]any{},
				},
			},
			expectError: true,
		},
		{
			name: "missing version field",
			secret: &api.Secret{
				Data: map[string]any{
					"metadata": map[string]any{"other": "value"},
				},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := vc.extractSecretVersion(tt.secret, "secret/backend")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
