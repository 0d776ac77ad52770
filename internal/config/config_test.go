package config

import (
	"os"
	"path/filepath"
	"testing"

	"labcare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: labcare-test
storage:
  backend: sqlite
  path: "${LABCARE_TEST_DB}"
session:
  auth_provider: password
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))
	t.Setenv("LABCARE_TEST_DB", filepath.Join(tmpDir, "test.db"))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "labcare-test", cfg.App.Name)
	assert.Equal(t, filepath.Join(tmpDir, "test.db"), cfg.Storage.Path)
	assert.Equal(t, AuthProviderPassword, cfg.Session.AuthProvider)
	assert.Equal(t, 8080, cfg.API.HTTP.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid sqlite",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendSQLite, Path: "path"},
				Session: SessionConfig{AuthProvider: AuthProviderInsecure},
			},
		},
		{
			name: "valid memory",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendMemory},
				Session: SessionConfig{AuthProvider: AuthProviderPassword},
			},
		},
		{
			name: "sqlite without path",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendSQLite},
				Session: SessionConfig{AuthProvider: AuthProviderInsecure},
			},
			wantErr: true,
		},
		{
			name: "redis without address",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendRedis},
				Session: SessionConfig{AuthProvider: AuthProviderInsecure},
			},
			wantErr: true,
		},
		{
			name: "unknown backend",
			cfg: Config{
				Storage: StorageConfig{Backend: "localstorage"},
				Session: SessionConfig{AuthProvider: AuthProviderInsecure},
			},
			wantErr: true,
		},
		{
			name: "unknown provider",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendMemory},
				Session: SessionConfig{AuthProvider: "oauth"},
			},
			wantErr: true,
		},
		{
			name: "api auth without keys",
			cfg: Config{
				Storage: StorageConfig{Backend: BackendMemory},
				Session: SessionConfig{AuthProvider: AuthProviderInsecure},
				API:     APIConfig{Auth: APIAuthConfig{Enabled: true}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "data/labcare.db", cfg.Storage.Path)
	assert.Equal(t, AuthProviderInsecure, cfg.Session.AuthProvider)
	assert.Equal(t, "x-api-key", cfg.API.Auth.HeaderAPIKey)
	assert.Equal(t, 0, cfg.Monitoring.PrometheusPort)

	cfg = &Config{Monitoring: MonitoringConfig{PrometheusEnabled: true}}
	cfg.applyDefaults()
	assert.Equal(t, 9090, cfg.Monitoring.PrometheusPort)
}

func TestValidateTests(t *testing.T) {
	tests := []struct {
		name    string
		tests   []models.LabTest
		wantErr bool
	}{
		{name: "Default catalog", tests: models.DefaultCatalog()},
		{
			name:    "Duplicate name",
			tests:   []models.LabTest{{Name: "A", Price: 1}, {Name: "A", Price: 2}},
			wantErr: true,
		},
		{
			name:    "Empty name",
			tests:   []models.LabTest{{Name: " ", Price: 1}},
			wantErr: true,
		},
		{
			name:    "Negative price",
			tests:   []models.LabTest{{Name: "A", Price: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTests(tt.tests)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTests() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoogleSheetsEnabled(t *testing.T) {
	assert.False(t, GoogleConfig{}.SheetsEnabled())
	assert.True(t, GoogleConfig{GoogleCredentialsFile: "c.json", BookingSpreadSheetID: "id"}.SheetsEnabled())
}
