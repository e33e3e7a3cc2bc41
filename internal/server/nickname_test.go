package server

import "testing"

func TestValidNickname(t *testing.T) {
	valid := []string{"abc", "Maria", "player one", "Jo_2026", "max-len-is-twenty-ch"}
	for _, name := range valid {
		if !validNickname(name) {
			t.Errorf("validNickname(%q) = false, want true", name)
		}
	}

	invalid := []string{
		"",
		"ab",
		"this nickname is way too long",
		"emoji🙂",
		"bad!char",
		"tab\tname",
		"newline\nname",
	}
	for _, name := range invalid {
		if validNickname(name) {
			t.Errorf("validNickname(%q) = true, want false", name)
		}
	}
}
