package insights

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"The Rent payment!", []string{"rent", "payment"}},
		{"Coffee at the corner cafe", []string{"coffee", "corner", "cafe"}},
		{"UBER *TRIP 4821", []string{"uber", "trip", "4821"}},
		{"my gym membership via card", []string{"gym", "membership", "card"}},
		{"", nil},
		{"!!! ... ---", nil},
		{"a an it to of", nil}, // stop words and short tokens only
	}
	for _, tc := range cases {
		got := Tokenize(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestTokenizeNormalization(t *testing.T) {
	for _, tok := range Tokenize("Netflix, SPOTIFY & Hulu subscriptions (monthly)") {
		if len(tok) <= 2 {
			t.Fatalf("token %q shorter than 3 runes", tok)
		}
		if _, stop := stopWords[tok]; stop {
			t.Fatalf("stop word %q leaked through", tok)
		}
		for _, r := range tok {
			if r >= 'A' && r <= 'Z' {
				t.Fatalf("token %q not lower-cased", tok)
			}
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
				t.Fatalf("token %q contains punctuation", tok)
			}
		}
	}
}
