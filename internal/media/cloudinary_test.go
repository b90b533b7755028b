package media

import (
	"net/url"
	"strings"
	"testing"
)

func TestCloudinaryHostURLIsDeterministic(t *testing.T) {
	host, err := NewCloudinaryHost("demo", "key", "secret")
	if err != nil {
		t.Fatal(err)
	}
	relay := NewRelay(host, Options{})
	tr := Transform{Width: 400, Height: 300, Crop: "fill", Quality: "80", Format: "webp"}

	first, err := relay.OptimizeURL("ecofinds/7/products/chair", tr)
	if err != nil {
		t.Fatal(err)
	}
	second, err := relay.OptimizeURL("ecofinds/7/products/chair", tr)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Fatalf("same input produced %q and %q", first, second)
	}
	for _, want := range []string{"demo", "c_fill,w_400,h_300,q_80,f_webp", "ecofinds/7/products/chair"} {
		if !strings.Contains(first, want) {
			t.Errorf("url %q missing %q", first, want)
		}
	}
}

func TestCloudinaryHostSignIsStable(t *testing.T) {
	host, err := NewCloudinaryHost("demo", "key", "secret")
	if err != nil {
		t.Fatal(err)
	}
	params := url.Values{"timestamp": {"1700000000"}, "folder": {"ecofinds/7/products"}}

	a, err := host.Sign(params)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := host.Sign(params)
	if a == "" || a != b {
		t.Fatalf("signatures %q and %q", a, b)
	}
}

func TestNewCloudinaryHostRequiresCredentials(t *testing.T) {
	if _, err := NewCloudinaryHost("", "key", "secret"); err == nil {
		t.Fatal("expected error for missing cloud name")
	}
}
