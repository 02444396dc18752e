package reading

import (
	"strings"
	"testing"
)

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name    string
		site    string
		reading Reading
		want    string
	}{
		{
			name:    "default site",
			site:    "",
			reading: New("665.1", "665.3", "665.0"),
			want:    "The J-17 Bexar aquifer level is 665.1. Yesterday, it was 665.3 and the 10-day average is 665.0",
		},
		{
			name:    "custom site keeps unit suffix",
			site:    "J-27 Uvalde",
			reading: New("871.2 ft", "871.4 ft", "870.9 ft"),
			want:    "The J-27 Uvalde aquifer level is 871.2 ft. Yesterday, it was 871.4 ft and the 10-day average is 870.9 ft",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMessage(tt.site, tt.reading)
			if got != tt.want {
				t.Errorf("FormatMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatMessage_Deterministic(t *testing.T) {
	r := New("665.1", "665.3", "665.0")

	first := FormatMessage(DefaultSiteName, r)
	for i := 0; i < 5; i++ {
		if got := FormatMessage(DefaultSiteName, r); got != first {
			t.Fatalf("call %d returned %q, want %q", i, got, first)
		}
	}
}

func TestFormatMessage_Truncates(t *testing.T) {
	long := strings.Repeat("9", 300)
	got := FormatMessage(DefaultSiteName, New(long, "1", "2"))

	if len(got) != MaxMessageLength {
		t.Errorf("FormatMessage() length = %d, want %d", len(got), MaxMessageLength)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("FormatMessage() = %q, want ellipsis suffix", got)
	}
}

func TestReading_Equal(t *testing.T) {
	a := New("665.1", "665.3", "665.0")

	if !a.Equal(New("665.1", "665.3", "665.0")) {
		t.Error("identical readings should be equal")
	}
	if a.Equal(New("665.2", "665.3", "665.0")) {
		t.Error("readings with different today values should differ")
	}
	if a.Equal(New("665.1", "665.1", "665.0")) {
		t.Error("readings with different yesterday values should differ")
	}
	if a.IsZero() {
		t.Error("populated reading should not be zero")
	}
	if !(Reading{}).IsZero() {
		t.Error("empty reading should be zero")
	}
}
