package vtt

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrParse is wrapped by every error returned from Parse
var ErrParse = errors.New("vtt parse error")

const signature = "WEBVTT"

var timestampRe = regexp.MustCompile(`^(?:(\d{2,}):)?(\d{2}):(\d{2})[.,](\d{3})$`)

// ParseError describes where a document stopped being valid WebVTT
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return ErrParse }

func parseErr(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Cue is a single timed caption. Timing holds the source timing line verbatim
// (timestamps plus cue settings) so it can be written back unchanged.
type Cue struct {
	ID     string
	Timing string
	Start  time.Duration
	End    time.Duration
	Lines  []string
}

// Text returns the cue payload with lines joined by newlines
func (c Cue) Text() string {
	return strings.Join(c.Lines, "\n")
}

// Block is a NOTE, STYLE or REGION block. Before is the index of the cue it
// precedes; len(Cues) places it after the last cue.
type Block struct {
	Before int
	Lines  []string
}

// Document is a parsed WebVTT file
type Document struct {
	Header   string
	Metadata []string
	Blocks   []Block
	Cues     []Cue
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	out := &Document{
		Header:   d.Header,
		Metadata: append([]string(nil), d.Metadata...),
		Blocks:   make([]Block, len(d.Blocks)),
		Cues:     make([]Cue, len(d.Cues)),
	}
	for i, b := range d.Blocks {
		out.Blocks[i] = Block{Before: b.Before, Lines: append([]string(nil), b.Lines...)}
	}
	for i, c := range d.Cues {
		c.Lines = append([]string(nil), c.Lines...)
		out.Cues[i] = c
	}
	return out
}

// Parse reads WebVTT content into a Document
func Parse(data []byte) (*Document, error) {
	content := string(data)
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	if strings.TrimSpace(content) == "" {
		return nil, parseErr(0, "empty input")
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !utf8.ValidString(line) {
			return nil, parseErr(i+1, "invalid UTF-8")
		}
	}
	first := lines[0]
	if !strings.HasPrefix(first, signature) {
		return nil, parseErr(1, "missing WEBVTT signature")
	}
	rest := first[len(signature):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil, parseErr(1, "missing WEBVTT signature")
	}

	doc := &Document{Header: strings.TrimSpace(rest)}

	i := 1
	for ; i < len(lines) && !isBlank(lines[i]); i++ {
		if strings.Contains(lines[i], "-->") {
			return nil, parseErr(i+1, "cue timing in header; a blank line must follow the WEBVTT line")
		}
		doc.Metadata = append(doc.Metadata, lines[i])
	}

	for i < len(lines) {
		for i < len(lines) && isBlank(lines[i]) {
			i++
		}
		if i >= len(lines) {
			break
		}
		start := i
		for i < len(lines) && !isBlank(lines[i]) {
			i++
		}
		if err := doc.addBlock(lines[start:i], start+1); err != nil {
			return nil, err
		}
	}

	if len(doc.Cues) == 0 {
		return nil, parseErr(0, "no cues found")
	}
	return doc, nil
}

func (d *Document) addBlock(block []string, lineNo int) error {
	if isRawBlock(block) {
		d.Blocks = append(d.Blocks, Block{
			Before: len(d.Cues),
			Lines:  append([]string(nil), block...),
		})
		return nil
	}

	cue := Cue{}
	timingIdx := 0
	if !strings.Contains(block[0], "-->") {
		if len(block) < 2 || !strings.Contains(block[1], "-->") {
			return parseErr(lineNo, "cue %d: missing timing line", len(d.Cues)+1)
		}
		cue.ID = block[0]
		timingIdx = 1
	}

	start, end, err := ParseTiming(block[timingIdx])
	if err != nil {
		return parseErr(lineNo+timingIdx, "%s", err.Error())
	}
	cue.Timing = block[timingIdx]
	cue.Start = start
	cue.End = end

	for j, line := range block[timingIdx+1:] {
		if strings.Contains(line, "-->") {
			return parseErr(lineNo+timingIdx+1+j, "cue %d: timing line inside cue text", len(d.Cues)+1)
		}
		cue.Lines = append(cue.Lines, line)
	}

	d.Cues = append(d.Cues, cue)
	return nil
}

// ParseTiming extracts start and end from a cue timing line such as
// "00:00:01.000 --> 00:00:02.500 align:start"
func ParseTiming(line string) (time.Duration, time.Duration, error) {
	left, right, ok := strings.Cut(line, "-->")
	if !ok {
		return 0, 0, fmt.Errorf("missing --> separator")
	}
	startTok := strings.TrimSpace(left)
	fields := strings.Fields(right)
	if startTok == "" || len(fields) == 0 {
		return 0, 0, fmt.Errorf("incomplete timing line %q", line)
	}

	start, err := ParseTimestamp(startTok)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("cue ends (%s) before it starts (%s)", fields[0], startTok)
	}
	return start, end, nil
}

// ParseTimestamp parses "hh:mm:ss.ttt" or "mm:ss.ttt"
func ParseTimestamp(ts string) (time.Duration, error) {
	m := timestampRe.FindStringSubmatch(ts)
	if m == nil {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	var h int
	if m[1] != "" {
		h, _ = strconv.Atoi(m[1])
	}
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.Atoi(m[3])
	ms, _ := strconv.Atoi(m[4])
	if mins > 59 || secs > 59 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(mins)*time.Minute +
		time.Duration(secs)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

// FormatTimestamp renders a duration as "hh:mm:ss.ttt"
func FormatTimestamp(d time.Duration) string {
	totalMs := d.Milliseconds()
	h := totalMs / 3600000
	totalMs %= 3600000
	m := totalMs / 60000
	totalMs %= 60000
	s := totalMs / 1000
	ms := totalMs % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// Format serializes a Document back to WebVTT
func Format(doc *Document) []byte {
	var sections []string

	head := signature
	if doc.Header != "" {
		head += " " + doc.Header
	}
	if len(doc.Metadata) > 0 {
		head += "\n" + strings.Join(doc.Metadata, "\n")
	}
	sections = append(sections, head)

	blocks := doc.Blocks
	for i, cue := range doc.Cues {
		for len(blocks) > 0 && blocks[0].Before <= i {
			sections = append(sections, strings.Join(blocks[0].Lines, "\n"))
			blocks = blocks[1:]
		}
		sections = append(sections, formatCue(cue))
	}
	for _, b := range blocks {
		sections = append(sections, strings.Join(b.Lines, "\n"))
	}

	return []byte(strings.Join(sections, "\n\n") + "\n")
}

func formatCue(cue Cue) string {
	var sb strings.Builder
	if cue.ID != "" {
		sb.WriteString(cue.ID)
		sb.WriteByte('\n')
	}
	timing := cue.Timing
	if timing == "" {
		timing = FormatTimestamp(cue.Start) + " --> " + FormatTimestamp(cue.End)
	}
	sb.WriteString(timing)
	for _, line := range cue.Lines {
		sb.WriteByte('\n')
		sb.WriteString(line)
	}
	return sb.String()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// isRawBlock reports whether block is a NOTE, STYLE or REGION block. A block
// carrying a timing line is a cue, whatever its identifier looks like.
func isRawBlock(block []string) bool {
	for _, line := range block {
		if strings.Contains(line, "-->") {
			return false
		}
	}
	first := block[0]
	for _, kw := range []string{"NOTE", "STYLE", "REGION"} {
		if first == kw || strings.HasPrefix(first, kw+" ") || strings.HasPrefix(first, kw+"\t") {
			return true
		}
	}
	return false
}
