package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write registry file: %v", err)
	}
	return path
}

func TestLoadProviderConfig(t *testing.T) {
	path := writeRegistry(t, `
providers:
  - name: cinetpay
    base_url: https://api-checkout.cinetpay.com/v2
    currency: XOF
    exponent: 0
    api_key_env: CINETPAY_API_KEY
    site_id_env: CINETPAY_SITE_ID
  - name: fedapay
    base_url: https://api.fedapay.com/v1
    currency: XOF
    exponent: 0
    api_key_env: FEDAPAY_API_KEY
`)

	providers, err := LoadProviderConfig(path)
	if err != nil {
		t.Fatalf("LoadProviderConfig failed: %v", err)
	}
	if len(providers) != 2 {
		t.Fatalf("Expected 2 providers, got %d", len(providers))
	}
	if providers[0].Name != "cinetpay" || providers[0].Currency != "XOF" {
		t.Errorf("Unexpected first provider: %+v", providers[0])
	}
	if providers[0].ApiKeyEnv != "CINETPAY_API_KEY" {
		t.Errorf("Expected api_key_env CINETPAY_API_KEY, got %s", providers[0].ApiKeyEnv)
	}
}

func TestLoadProviderConfig_MissingFields(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing name", "providers:\n  - base_url: https://x\n    currency: XOF\n"},
		{"missing base_url", "providers:\n  - name: x\n    currency: XOF\n"},
		{"missing currency", "providers:\n  - name: x\n    base_url: https://x\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeRegistry(t, tc.content)
			if _, err := LoadProviderConfig(path); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadProviderConfig_FileMissing(t *testing.T) {
	if _, err := LoadProviderConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFindProvider(t *testing.T) {
	path := writeRegistry(t, `
providers:
  - name: cinetpay
    base_url: https://api-checkout.cinetpay.com/v2
    currency: XOF
`)
	providers, err := LoadProviderConfig(path)
	if err != nil {
		t.Fatalf("LoadProviderConfig failed: %v", err)
	}

	provider, err := FindProvider(providers, "cinetpay")
	if err != nil {
		t.Fatalf("FindProvider failed: %v", err)
	}
	if provider.BaseUrl != "https://api-checkout.cinetpay.com/v2" {
		t.Errorf("Unexpected base url: %s", provider.BaseUrl)
	}

	if _, err := FindProvider(providers, "stripe"); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		minor    int64
		exponent int32
		want     string
	}{
		{1050, 2, "10.50"},
		{1500, 0, "1500"},
		{0, 2, "0.00"},
		{-250, 2, "-2.50"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.minor, tc.exponent); got != tc.want {
			t.Errorf("FormatAmount(%d, %d) = %s, want %s", tc.minor, tc.exponent, got, tc.want)
		}
	}
}
