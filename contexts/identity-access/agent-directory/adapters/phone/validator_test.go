package phone

import "testing"

func TestValidatorInternationalNumbers(t *testing.T) {
	validator := Validator{}
	cases := map[string]bool{
		"+12015550123":  true,
		"+447400123456": true,
		"+918123456789": true,
		"2015550123":    false,
		"+1234":         false,
		"not-a-number":  false,
		"":              false,
	}
	for input, want := range cases {
		if got := validator.Valid(input); got != want {
			t.Fatalf("Valid(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestValidatorDefaultRegion(t *testing.T) {
	validator := Validator{DefaultRegion: "us"}
	if !validator.Valid("(201) 555-0123") {
		t.Fatal("expected national US number to validate with default region")
	}
}
