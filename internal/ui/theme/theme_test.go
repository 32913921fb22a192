package theme

import (
	"testing"

	"github.com/dori/timelog/internal/model"
)

func TestForDarkMode(t *testing.T) {
	if got := ForDarkMode(true); !got.Dark || got.Name != "nord" {
		t.Fatalf("dark mode theme = %q", got.Name)
	}
	if got := ForDarkMode(false); got.Dark || got.Name != "snow" {
		t.Fatalf("light mode theme = %q", got.Name)
	}
}

func TestSetThemeRebuildsStyles(t *testing.T) {
	defer SetTheme(Snow)

	SetTheme(Nord)
	if Current.Theme.Name != "nord" {
		t.Fatalf("expected nord, got %q", Current.Theme.Name)
	}
	if Current.Styles.HelpKey.GetForeground() != Nord.Primary {
		t.Fatal("styles were not rebuilt from the new theme")
	}
}

func TestPtoColor(t *testing.T) {
	if Nord.PtoColor(model.PtoSick) != Nord.PtoSick {
		t.Fatal("sick color mismatch")
	}
	if Nord.PtoColor(model.PtoType("other")) != Nord.Foreground {
		t.Fatal("unknown type should fall back to foreground")
	}
}
