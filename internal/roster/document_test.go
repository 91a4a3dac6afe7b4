package roster

import "testing"

func TestDetectDocumentType(t *testing.T) {
	cases := []struct {
		value string
		want  string
	}{
		{"12345678Z", "DNI"},
		{"  12345678z ", "DNI"},
		{"X1234567L", "NIE"},
		{"y7654321b", "NIE"},
		{"", ""},
		{"   ", ""},
		{"12345678", ""},
		{"ABC", "NIE"},
		{"AB123456C", "NIE"},
		{"123456A", "DNI"},
		{"PA1234567", ""},
	}

	for _, c := range cases {
		if got := DetectDocumentType(c.value); got != c.want {
			t.Fatalf("DetectDocumentType(%q) = %q, want %q", c.value, got, c.want)
		}
	}
}
