package media

import "testing"

func TestClassifyByExtension(t *testing.T) {
	cases := []struct {
		path string
		want Type
	}{
		{"interview.WAV", TypeAudio},
		{"/uploads/album/track01.flac", TypeAudio},
		{"clip.m4a", TypeAudio},
		{"lecture.MOV", TypeVideo},
		{"reel.mkv", TypeVideo},
		{"home-movie.3gp", TypeVideo},
		{"scan.tiff", TypeImage},
		{"Page-001.JP2", TypeImage},
		{"notes.txt", TypeUnsupported},
		{"noextension", TypeUnsupported},
		{"", TypeUnsupported},
	}
	for _, tc := range cases {
		if got := Classify(tc.path); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestExtLowercasesWithoutDot(t *testing.T) {
	if got := Ext("/tmp/Video.MP4"); got != "mp4" {
		t.Fatalf("Ext = %q", got)
	}
	if got := Ext("archive.tar.gz"); got != "gz" {
		t.Fatalf("Ext = %q", got)
	}
	if got := Ext("plain"); got != "" {
		t.Fatalf("Ext = %q", got)
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("a.mp3") || !IsSupported("b.webm") {
		t.Fatal("expected supported formats")
	}
	if IsSupported("c.pdf") {
		t.Fatal("pdf should be unsupported")
	}
	if !IsAudio("a.oga") || IsAudio("b.mp4") {
		t.Fatal("IsAudio misclassified")
	}
	if !IsVideo("b.mpeg") || IsVideo("a.aiff") {
		t.Fatal("IsVideo misclassified")
	}
	if !IsImage("scan.png") || IsImage("a.mp3") {
		t.Fatal("IsImage misclassified")
	}
	if IsSupported("scan.png") {
		t.Fatal("still images are not time-based media")
	}
}
