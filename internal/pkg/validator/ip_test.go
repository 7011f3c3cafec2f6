package validator

import "testing"

func TestIsValidIP(t *testing.T) {
	cases := []struct {
		ip    string
		valid bool
	}{
		{"192.168.1.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"", false},
		{"not-an-ip", false},
		{"256.1.1.1", false},
	}

	for _, tc := range cases {
		if got := IsValidIP(tc.ip); got != tc.valid {
			t.Errorf("IsValidIP(%q) = %v, want %v", tc.ip, got, tc.valid)
		}
	}
}

func TestNormalizeIP(t *testing.T) {
	if got := NormalizeIP("fe80::1%eth0"); got != "fe80::1" {
		t.Errorf("NormalizeIP stripped zone wrong: %q", got)
	}
	if got := NormalizeIP("10.0.0.1"); got != "10.0.0.1" {
		t.Errorf("NormalizeIP changed plain IP: %q", got)
	}
}

func TestGetIPOrDefault(t *testing.T) {
	if got := GetIPOrDefault("garbage", "0.0.0.0"); got != "0.0.0.0" {
		t.Errorf("expected default for invalid ip, got %q", got)
	}
	if got := GetIPOrDefault("fe80::1%eth0", "0.0.0.0"); got != "fe80::1" {
		t.Errorf("expected normalized ip, got %q", got)
	}
}
