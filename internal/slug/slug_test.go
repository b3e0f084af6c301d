package slug

import (
	"strings"
	"testing"
)

// TestGenerate exercises the slug generator with typical finance titles,
// special characters, unicode and boundary conditions.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "BTC Outlook", want: "btc-outlook"},
		{name: "title with year", input: "Crypto Outlook 2026", want: "crypto-outlook-2026"},
		{name: "already lowercase", input: "already lowercase", want: "already-lowercase"},
		{name: "single word", input: "Ethereum", want: "ethereum"},

		// --- Special characters ---
		{name: "punctuation marks", input: "Is Bitcoin Dead? Not Yet!", want: "is-bitcoin-dead-not-yet"},
		{name: "dollar amounts", input: "Bitcoin Hits $100K", want: "bitcoin-hits-100k"},
		{name: "ampersand", input: "Stocks & Bonds", want: "stocks-bonds"},
		{name: "ticker pair", input: "ETH/BTC Ratio Explained", want: "ethbtc-ratio-explained"},
		{name: "percent sign", input: "S&P 500 Up 2%", want: "sp-500-up-2"},

		// --- Unicode is transliterated ---
		{name: "french accents", input: "Société Générale", want: "societe-generale"},
		{name: "german umlauts", input: "Über die Börse", want: "uber-die-borse"},
		{name: "spanish tilde", input: "Año Récord", want: "ano-record"},

		// --- Whitespace handling ---
		{name: "leading and trailing spaces", input: "  hello world  ", want: "hello-world"},
		{name: "multiple consecutive spaces collapsed", input: "hello    world", want: "hello-world"},
		{name: "tabs become hyphens", input: "hello\tworld", want: "hello-world"},
		{name: "newlines become hyphens", input: "hello\nworld", want: "hello-world"},

		// --- Hyphen handling ---
		{name: "leading hyphens", input: "---hello world", want: "hello-world"},
		{name: "multiple hyphens between words", input: "hello---world", want: "hello-world"},
		{name: "hyphens and spaces mixed", input: "  --hello -- world--  ", want: "hello-world"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "only special characters", input: "!@#$%^&*()", want: ""},
		{name: "version number", input: "Version 2.0.1", want: "version-201"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"btc-outlook", "my-post-2026", "a", "123"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestGenerate_MaxLength(t *testing.T) {
	long := strings.Repeat("bitcoin ", 40)
	got := Generate(long)

	if len(got) > MaxLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("slug %q ends with a hyphen", got)
	}
	if !strings.HasSuffix(got, "bitcoin") {
		t.Errorf("slug %q was cut mid-word", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"btc-outlook", true},
		{"a1", true},
		{"", false},
		{"BTC", false},
		{"btc--outlook", false},
		{"-btc", false},
		{"btc outlook", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.in); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithSuffix(t *testing.T) {
	a := WithSuffix("btc-outlook")
	b := WithSuffix("btc-outlook")

	if !strings.HasPrefix(a, "btc-outlook-") {
		t.Errorf("WithSuffix = %q, want btc-outlook- prefix", a)
	}
	if len(a) != len("btc-outlook-")+6 {
		t.Errorf("WithSuffix = %q, want 6 hex chars appended", a)
	}
	if a == b {
		t.Errorf("two suffixes collided: %q", a)
	}
	if !Valid(a) {
		t.Errorf("WithSuffix produced invalid slug %q", a)
	}
	if got := WithSuffix(""); len(got) != 6 {
		t.Errorf("WithSuffix(\"\") = %q, want bare 6-char suffix", got)
	}
}
