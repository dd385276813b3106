package instance

import (
	"testing"

	"github.com/angelmondragon/salesreport/pkg/config"
)

func TestGetIDPrefersEnv(t *testing.T) {
	t.Setenv(config.EnvInstanceID, "api-7")
	if got := GetID(); got != "api-7" {
		t.Fatalf("expected env id, got %q", got)
	}
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv(config.EnvInstanceID, "")
	if got := GetID(); got == "" {
		t.Fatal("expected hostname or fallback id")
	}
}
