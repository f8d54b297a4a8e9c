package engine

import "testing"

func TestFileURI(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/index.ts", "file:///src/index.ts"},
		{"/src/index.ts", "file:///src/index.ts"},
		{"a b.txt", "file:///a%20b.txt"},
	}

	for _, tt := range tests {
		if got := FileURI(tt.path).String(); got != tt.want {
			t.Errorf("FileURI(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestParseURI(t *testing.T) {
	u, err := ParseURI("file:///src/a%20b.ts")
	if err != nil {
		t.Fatalf("ParseURI: %v", err)
	}
	if u.Scheme != "file" || u.Path != "/src/a b.ts" {
		t.Errorf("ParseURI = %+v", u)
	}
	if !u.Matches("src/a b.ts") || !u.Matches("/src/a b.ts") {
		t.Error("Matches should accept both forms")
	}
}
