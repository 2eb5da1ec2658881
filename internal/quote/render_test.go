package quote

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestIsLocalFile(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"https://cdn.example.com/a.png", true},
		{"http://cdn.example.com/a.png", true},
		{ImageMarker, true},
		{"something funny someone said", false},
		{"images are nice", false},
	}

	for _, tt := range tests {
		q := &Quote{Content: tt.content}
		if got := q.IsLocalFile(); got != tt.want {
			t.Errorf("IsLocalFile(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	dataDir := t.TempDir()

	t.Run("file backed with tags", func(t *testing.T) {
		q := &Quote{ID: 7, Content: "https://cdn.example.com/a.png", Tags: NewTagSet("42", "cat")}
		got := Render(q, dataDir, true)

		if !strings.HasPrefix(got, `7:["42","cat"]<img src="file://`) {
			t.Errorf("Render() = %q, want id, tags, then img element", got)
		}
		if !strings.HasSuffix(got, filepath.ToSlash(filepath.Join(dataDir, "7"))+`">`) {
			t.Errorf("Render() = %q, want src ending in data dir file", got)
		}
	})

	t.Run("text without tags", func(t *testing.T) {
		q := &Quote{ID: 3, Content: "hello", Tags: NewTagSet("42")}
		if got := Render(q, dataDir, false); got != "3:hello" {
			t.Errorf("Render() = %q, want %q", got, "3:hello")
		}
	})
}

func TestListLine(t *testing.T) {
	q := &Quote{ID: 12, Tags: NewTagSet("42", "a")}
	if got := ListLine(q); got != `12:["42","a"]` {
		t.Errorf("ListLine() = %q", got)
	}
}

func TestParseReference(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantID  int64
		wantOK  bool
	}{
		{"rendered quote", `15:["42"]<img src="file:///data/15">`, 15, true},
		{"stripped element", `>23:hello`, 23, true},
		{"no id", "just chatting", 0, false},
		{"zero id", "0:nothing", 0, false},
		{"digits without colon", "12345", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseReference(tt.content)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ParseReference(%q) = (%d, %v), want (%d, %v)", tt.content, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}
