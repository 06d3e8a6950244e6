package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"admin": map[string]any{
			"breakGlassMaxTTL": "1h",
			"ipAllowlist":      []any{},
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"rateLimit": map[string]any{
			"loginPerSecond": 1,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "ADMIN_BREAKGLASSMAXTTL", want: "admin.breakGlassMaxTTL"},
		{envKey: "ADMIN_IPALLOWLIST", want: "admin.ipAllowlist"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "RATELIMIT_LOGINPERSECOND", want: "rateLimit.loginPerSecond"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
