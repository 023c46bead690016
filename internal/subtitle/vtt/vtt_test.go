package vtt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const sample = `WEBVTT - demo
Kind: captions
Language: en

NOTE produced by hand

1
00:00:01.000 --> 00:00:02.500 align:start position:10%
Hello there.

intro-2
00:00:03.000 --> 00:00:05.000
Two lines
of text

00:06.250 --> 00:07.000
[music]
`

func TestParseSample(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Header != "- demo" {
		t.Fatalf("unexpected header %q", doc.Header)
	}
	if len(doc.Metadata) != 2 || doc.Metadata[1] != "Language: en" {
		t.Fatalf("unexpected metadata %#v", doc.Metadata)
	}
	if len(doc.Blocks) != 1 || doc.Blocks[0].Before != 0 {
		t.Fatalf("unexpected blocks %#v", doc.Blocks)
	}
	if len(doc.Cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(doc.Cues))
	}

	first := doc.Cues[0]
	if first.ID != "1" {
		t.Fatalf("unexpected id %q", first.ID)
	}
	if first.Timing != "00:00:01.000 --> 00:00:02.500 align:start position:10%" {
		t.Fatalf("timing line not preserved: %q", first.Timing)
	}
	if first.Start != time.Second || first.End != 2500*time.Millisecond {
		t.Fatalf("unexpected times %s..%s", first.Start, first.End)
	}

	if got := doc.Cues[1].Text(); got != "Two lines\nof text" {
		t.Fatalf("unexpected multi-line text %q", got)
	}
	if doc.Cues[2].ID != "" || doc.Cues[2].Start != 6250*time.Millisecond {
		t.Fatalf("unexpected short-form cue %#v", doc.Cues[2])
	}
}

func TestParseCRLFAndBOM(t *testing.T) {
	input := "\ufeffWEBVTT\r\n\r\n00:00:01.000 --> 00:00:02.000\r\nhi\r\n"
	doc, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(doc.Cues) != 1 || doc.Cues[0].Text() != "hi" {
		t.Fatalf("unexpected cues %#v", doc.Cues)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"whitespace":     "  \n\n",
		"no signature":   "1\n00:00:01.000 --> 00:00:02.000\nhi\n",
		"bad signature":  "WEBVTTX\n\n00:00:01.000 --> 00:00:02.000\nhi\n",
		"missing timing": "WEBVTT\n\n1\nhello\n",
		"bad timestamp":  "WEBVTT\n\n00:00:01 --> 00:00:02.000\nhi\n",
		"end before":     "WEBVTT\n\n00:00:05.000 --> 00:00:02.000\nhi\n",
		"no cues":        "WEBVTT\n\nNOTE nothing here\n",
		"bad minutes":    "WEBVTT\n\n00:61:01.000 --> 00:62:02.000\nhi\n",
		"invalid utf-8":  "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\n\xff\xfe\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.Is(err, ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestParseInvalidUTF8Line(t *testing.T) {
	_, err := Parse([]byte("WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nok \xff\xfe\n"))
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 4 {
		t.Fatalf("expected a parse error on line 4, got %v", err)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	out := Format(doc)

	again, err := Parse(out)
	if err != nil {
		t.Fatalf("re-parse returned error: %v\n%s", err, out)
	}
	if len(again.Cues) != len(doc.Cues) {
		t.Fatalf("cue count changed: %d != %d", len(again.Cues), len(doc.Cues))
	}
	for i := range doc.Cues {
		if again.Cues[i].Timing != doc.Cues[i].Timing {
			t.Fatalf("cue %d timing changed: %q != %q", i, again.Cues[i].Timing, doc.Cues[i].Timing)
		}
		if again.Cues[i].Text() != doc.Cues[i].Text() {
			t.Fatalf("cue %d text changed", i)
		}
	}
	if !strings.HasPrefix(string(out), "WEBVTT - demo\nKind: captions\nLanguage: en\n\nNOTE produced by hand\n\n1\n") {
		t.Fatalf("unexpected output prefix:\n%s", out)
	}
	if !strings.HasSuffix(string(out), "[music]\n") {
		t.Fatalf("expected single trailing newline:\n%q", out)
	}
}

func TestParseKeywordCueID(t *testing.T) {
	doc, err := Parse([]byte("WEBVTT\n\nNOTE 1\n00:00:01.000 --> 00:00:02.000\nHello\n\n00:00:03.000 --> 00:00:04.000\nBye\n"))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(doc.Cues) != 2 || len(doc.Blocks) != 0 {
		t.Fatalf("got %d cues and %d blocks, want 2 cues", len(doc.Cues), len(doc.Blocks))
	}
	if doc.Cues[0].ID != "NOTE 1" || doc.Cues[0].Text() != "Hello" {
		t.Fatalf("unexpected first cue %#v", doc.Cues[0])
	}
}

func TestFormatTrailingBlock(t *testing.T) {
	doc := &Document{
		Cues:   []Cue{{Start: time.Second, End: 2 * time.Second, Lines: []string{"a"}}},
		Blocks: []Block{{Before: 1, Lines: []string{"NOTE end"}}},
	}
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\na\n\nNOTE end\n"
	if got := string(Format(doc)); got != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", got, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	clone := doc.Clone()
	clone.Cues[0].Lines[0] = "changed"
	if doc.Cues[0].Lines[0] != "Hello there." {
		t.Fatal("clone shares cue lines with source")
	}
}

func TestTimestamps(t *testing.T) {
	d, err := ParseTimestamp("01:02:03.004")
	if err != nil {
		t.Fatalf("ParseTimestamp returned error: %v", err)
	}
	if got := FormatTimestamp(d); got != "01:02:03.004" {
		t.Fatalf("unexpected format %q", got)
	}
	if _, err := ParseTimestamp("1:2:3.4"); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
}
