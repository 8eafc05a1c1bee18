package audio

import (
	"strings"
	"testing"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, false)

	content := creator.CreatePlaylist("Session", createTestEntries())

	want := "track1.mp3\ntrack2.mp3\n"
	if content != want {
		t.Errorf("M3U = %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	creator := NewPlaylistCreator(FormatM3U, true)

	content := creator.CreatePlaylist("Session", createTestEntries())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,Test Artist - track1\n") {
		t.Errorf("missing EXTINF for track1:\n%s", content)
	}
	// Unknown duration and artist.
	if !strings.Contains(content, "#EXTINF:-1,track2\n") {
		t.Errorf("missing EXTINF for track2:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	creator := NewPlaylistCreator(FormatPLS, false)

	content := creator.CreatePlaylist("Session", createTestEntries())

	for _, want := range []string{"[playlist]\n", "File1=track1.mp3\n", "Length1=180\n", "File2=track2.mp3\n", "NumberOfEntries=2\n", "Version=2\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q:\n%s", want, content)
		}
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	creator := NewPlaylistCreator(FormatWPL, false)

	content := creator.CreatePlaylist("Session", createTestEntries())

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if !strings.Contains(content, "<title>Session</title>") {
		t.Error("WPL should contain the title")
	}
	if strings.Count(content, "<media src=") != 2 {
		t.Error("WPL should contain one media element per entry")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	entries := []Entry{{Path: "/music/Track & \"Quote\".mp3", Title: "Track"}}

	content := NewPlaylistCreator(FormatWPL, false).CreatePlaylist("Mix <Special>", entries)

	if strings.Contains(content, "<Special>") {
		t.Error("WPL should escape < and >")
	}
	if !strings.Contains(content, "Track &amp; &quot;Quote&quot;.mp3") {
		t.Errorf("WPL should escape the path:\n%s", content)
	}
}

func TestPlaylistCreator_Empty(t *testing.T) {
	content := NewPlaylistCreator(FormatPLS, false).CreatePlaylist("", nil)
	if !strings.Contains(content, "NumberOfEntries=0") {
		t.Errorf("PLS = %q", content)
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    PlaylistFormat
		ext     string
		wantErr bool
	}{
		{"m3u", FormatM3U, ".m3u", false},
		{"PLS", FormatPLS, ".pls", false},
		{" wpl ", FormatWPL, ".wpl", false},
		{"zpl", FormatM3U, ".m3u", true},
	}

	for _, tt := range tests {
		got, err := ParsePlaylistFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlaylistFormat(%q) err = %v", tt.in, err)
		}
		if got != tt.want || got.Extension() != tt.ext {
			t.Errorf("ParsePlaylistFormat(%q) = %v (%s)", tt.in, got, got.Extension())
		}
	}
}

func createTestEntries() []Entry {
	return []Entry{
		{Path: "/music/track1.mp3", Title: "track1", Artist: "Test Artist", Duration: 180.4},
		{Path: "/music/track2.mp3", Title: "track2"},
	}
}
