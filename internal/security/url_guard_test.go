package security

import (
	"testing"
	"time"
)

func TestValidateURL_AllowsPublicURLs(t *testing.T) {
	g := NewURLGuard()

	valid := []string{
		"https://example.com/image.png",
		"http://example.com/photo.jpg",
		"https://cdn.example.org/assets/header.webp",
		"https://93.184.216.34/image.png",
	}

	for _, u := range valid {
		if err := g.ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}
}

func TestValidateURL_RejectsDisallowedSchemes(t *testing.T) {
	g := NewURLGuard()

	invalid := []string{
		"ftp://example.com/image.png",
		"file:///etc/passwd",
		"javascript:alert(1)",
		"gopher://example.com/",
	}

	for _, u := range invalid {
		if err := g.ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestValidateURL_RejectsPrivateAndSpecialIPs(t *testing.T) {
	g := NewURLGuard()

	blocked := []string{
		"http://10.0.0.5/image.png",
		"http://172.16.0.1/image.png",
		"http://192.168.1.1/image.png",
		"http://127.0.0.1/image.png",
		"http://169.254.169.254/latest/meta-data/",
		"http://0.0.0.0/",
		"http://[::1]/image.png",
		"http://[fe80::1]/image.png",
	}

	for _, u := range blocked {
		if err := g.ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestValidateURL_RejectsLocalhost(t *testing.T) {
	g := NewURLGuard()

	if err := g.ValidateURL("http://localhost/image.png"); err == nil {
		t.Error("expected error for localhost")
	}
	if err := g.ValidateURL("http://LOCALHOST:8080/image.png"); err == nil {
		t.Error("expected error for uppercase localhost")
	}
}

func TestValidateURL_RejectsMalformed(t *testing.T) {
	g := NewURLGuard()

	if err := g.ValidateURL(""); err == nil {
		t.Error("expected error for empty URL")
	}
	if err := g.ValidateURL("https://"); err == nil {
		t.Error("expected error for URL without host")
	}
}

func TestNewSafeClient_ReturnsConfiguredClient(t *testing.T) {
	g := NewURLGuard()

	client := g.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("expected non-nil client")
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want %v", client.Timeout, 5*time.Second)
	}
}
