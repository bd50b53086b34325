package utils

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips query string",
			in:   "https://cdn.example.com/watch-assets/diver/dial/blue.png?v=2",
			want: "https://cdn.example.com/watch-assets/diver/dial/blue.png",
		},
		{
			name: "strips fragment",
			in:   "https://cdn.example.com/a.png#section",
			want: "https://cdn.example.com/a.png",
		},
		{
			name: "strips trailing slash",
			in:   "https://cdn.example.com/a/",
			want: "https://cdn.example.com/a",
		},
		{
			name: "trims whitespace",
			in:   "  https://cdn.example.com/a.png  ",
			want: "https://cdn.example.com/a.png",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "plain path untouched",
			in:   "/local/a.png",
			want: "/local/a.png",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(tt.in); got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractProductSegment(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{
			name:   "conventional URL",
			in:     "https://cdn.example.com/watch-assets/diver/dial/blue.png",
			want:   "diver",
			wantOK: true,
		},
		{
			name:   "marker deeper in the path",
			in:     "https://cdn.example.com/buckets/eu/watch-assets/pilot/hands/sword.png",
			want:   "pilot",
			wantOK: true,
		},
		{
			name:   "no marker",
			in:     "https://images.example.org/photos/123.png",
			wantOK: false,
		},
		{
			name:   "marker at the end",
			in:     "https://cdn.example.com/watch-assets",
			wantOK: false,
		},
		{
			name:   "marker followed by empty segment",
			in:     "https://cdn.example.com/watch-assets//dial/blue.png",
			wantOK: false,
		},
		{
			name:   "empty input",
			in:     "",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractProductSegment(tt.in)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractProductSegment(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Blue Dial.PNG", want: "blue-dial.png"},
		{name: "collapses special characters", in: "hands (v2)!!.png", want: "hands-v2-.png"},
		{name: "keeps safe characters", in: "dial_01-final.png", want: "dial_01-final.png"},
		{name: "empty falls back", in: "   ", want: "asset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBlobPath(t *testing.T) {
	got := BlobPath("diver", "dial", 1700000000, 3, "Blue Dial.png")
	want := "diver/dial/1700000000-3-blue-dial.png"
	if got != want {
		t.Errorf("BlobPath() = %q, want %q", got, want)
	}
}
