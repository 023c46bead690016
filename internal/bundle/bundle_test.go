package bundle

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"
)

func TestBaseName(t *testing.T) {
	cases := map[string]string{
		"lecture.vtt":               "lecture",
		"../../etc/passwd.vtt":      "passwd",
		`C:\clips\Town Hall Q3.vtt`: "Town_Hall_Q3",
		".vtt":                      "subtitles",
		"åäö.vtt":                   "subtitles",
	}
	for in, want := range cases {
		if got := BaseName(in); got != want {
			t.Fatalf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWrite(t *testing.T) {
	files := []File{
		{Name: FileName("talk", "de-DE"), Data: []byte("WEBVTT\n\nde\n")},
		{Name: FileName("talk", "zh-Hans"), Data: []byte("WEBVTT\n\nzh\n")},
	}
	var buf bytes.Buffer
	if err := Write(&buf, files, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != files[i].Name {
			t.Fatalf("entry %d: expected %s, got %s", i, files[i].Name, f.Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if !bytes.Equal(data, files[i].Data) {
			t.Fatalf("%s: content mismatch", f.Name)
		}
	}
}

func TestWriteRejectsDuplicates(t *testing.T) {
	files := []File{{Name: "a.vtt"}, {Name: "a.vtt"}}
	if err := Write(io.Discard, files, time.Now()); err == nil {
		t.Fatal("expected duplicate entry error")
	}
}
