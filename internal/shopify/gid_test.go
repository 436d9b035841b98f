package shopify

import "testing"

func TestNumericID(t *testing.T) {
	cases := []struct {
		gid  string
		want string
	}{
		{"gid://shopify/Product/123", "123"},
		{"gid://shopify/ProductVariant/456789", "456789"},
		{"123", "123"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NumericID(tc.gid); got != tc.want {
			t.Errorf("NumericID(%q) = %q, want %q", tc.gid, got, tc.want)
		}
	}
}

func TestNumericIDInt64(t *testing.T) {
	id, err := NumericIDInt64("gid://shopify/Product/42")
	if err != nil || id != 42 {
		t.Errorf("got %d, %v", id, err)
	}

	if _, err := NumericIDInt64("gid://shopify/Product/abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
