package logger

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"ann@example.com":  "a…@e….com",
		" Bob@X.io ":       "b…@x.io",
		"a@mail.co.uk":     "a@m….co.uk",
		"":                 "***",
		"nodomain-address": "n…s",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
