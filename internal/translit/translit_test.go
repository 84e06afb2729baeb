package translit

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "Lima", "Lima"},
		{"acute accents", "São Paulo", "Sao Paulo"},
		{"cedilla and circumflex", "Curaçao Bonaire Île", "Curacao Bonaire Ile"},
		{"umlaut", "Zürich", "Zurich"},
		{"non decomposing letters", "Łódź Ørsta Straße", "Lodz Orsta Strasse"},
		{"surrounding space", "  Tokyo ", "Tokyo"},
		{"cyrillic", "Радио Дача", "Radio Dacha"},
		{"greek", "Αθήνα", "Athena"},
		{"greek country", "Ελλάδα", "Ellada"},
		{"han without trailing space", "東京", "Dong Jing"},
		{"decomposed accent", "Bogota\u0301", "Bogota"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fold(tt.input); got != tt.want {
				t.Errorf("Fold(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFoldIdempotent(t *testing.T) {
	for _, s := range []string{"Bogotá", "Kraków", "Reykjavík", "Malmö", "Москва", "東京"} {
		once := Fold(s)
		if twice := Fold(once); twice != once {
			t.Errorf("Fold(Fold(%q)) = %q, want %q", s, twice, once)
		}
	}
}
