package language

import (
	"reflect"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"es", "es"},
		{"eng", "en"},
		{"spa", "es"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"dut", "nl"},
		{"english", "en"},
		{"French", "fr"},
		{"castilian", "es"},
		{"pt-BR", "pt"},
		{"zh-Hant", "zh"},
		{"sw", "sw"},
		{"xyz", ""},
		{"not a language", ""},
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExecutionOrder(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{"baseline prepended", []string{"es", "fr"}, []string{"en", "es", "fr"}},
		{"duplicates removed", []string{"es", "en", "es"}, []string{"en", "es"}},
		{"case insensitive", []string{"ES", "es", "EN"}, []string{"en", "es"}},
		{"empty request", nil, []string{"en"}},
		{"blank entries skipped", []string{" ", "de"}, []string{"en", "de"}},
		{"caller order kept", []string{"ja", "de", "es"}, []string{"en", "ja", "de", "es"}},
		{"aliases collapse", []string{"en-US", "english", "ES"}, []string{"en", "es"}},
		{"regional tags normalized", []string{"pt-BR", "pt", "eng"}, []string{"en", "pt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExecutionOrder(tt.requested); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExecutionOrder(%v) = %v, want %v", tt.requested, got, tt.want)
			}
		})
	}
}

func TestExecutionOrderHasBaselineOnce(t *testing.T) {
	got := ExecutionOrder([]string{"en", "EN", " en "})
	if len(got) != 1 || got[0] != Baseline {
		t.Fatalf("expected only the baseline, got %v", got)
	}
}

func TestIsBaselineAcceptsAliases(t *testing.T) {
	for _, code := range []string{"en", "EN", "en-US", "english", "eng"} {
		if !IsBaseline(code) {
			t.Errorf("IsBaseline(%q) = false", code)
		}
	}
	for _, code := range []string{"es", "", "fr-CA"} {
		if IsBaseline(code) {
			t.Errorf("IsBaseline(%q) = true", code)
		}
	}
}

func TestValidate(t *testing.T) {
	for _, ok := range []string{"en", "es", "Spanish", "pt-BR"} {
		if err := Validate(ok); err != nil {
			t.Errorf("Validate(%q) returned %v", ok, err)
		}
	}
	for _, bad := range []string{"", "  ", "klingon-ish", "123"} {
		if err := Validate(bad); err == nil {
			t.Errorf("Validate(%q) expected error", bad)
		}
	}
}

func TestEqualNormalizesForms(t *testing.T) {
	if !Equal("english", "EN") {
		t.Fatal("expected english and EN to match")
	}
	if Equal("es", "en") {
		t.Fatal("expected es and en to differ")
	}
	if Equal("", "") {
		t.Fatal("expected empty codes never to match")
	}
}

func TestNormalizeList(t *testing.T) {
	got := NormalizeList([]string{"English", "eng", "spa", "es", ""})
	want := []string{"en", "es"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeList = %v, want %v", got, want)
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("fre"); got != "French" {
		t.Fatalf("DisplayName(fre) = %q", got)
	}
	if got := DisplayName(""); got != "Unknown" {
		t.Fatalf("DisplayName(empty) = %q", got)
	}
	if got := DisplayName("sw"); got != "Swahili" {
		t.Fatalf("DisplayName(sw) = %q", got)
	}
}
