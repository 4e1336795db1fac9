package phone

import "testing"

func TestCanonical(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"jid with country code", "5511999999999@s.whatsapp.net", "5511999999999"},
		{"e164 with plus", "+5511999999999", "5511999999999"},
		{"formatted national number", "(11) 99999-9999", "5511999999999"},
		{"bare local mobile", "11999999999", "5511999999999"},
		{"bare local landline", "1133334444", "551133334444"},
		{"already canonical", "5511999999999", "5511999999999"},
		{"garbage keeps digits", "abc123", "123"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Canonical(tc.raw); got != tc.want {
				t.Errorf("Canonical(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestCanonicalIsDeterministic(t *testing.T) {
	raw := "+55 (11) 99999-9999"
	first := Canonical(raw)
	for i := 0; i < 10; i++ {
		if got := Canonical(raw); got != first {
			t.Fatalf("Canonical(%q) changed between calls: %q then %q", raw, first, got)
		}
	}
}
