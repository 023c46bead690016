package bundle

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveName is the download name of every bundle
const ArchiveName = "translations.zip"

// File is one archive member
type File struct {
	Name string
	Data []byte
}

// BaseName derives a safe file stem from an uploaded file name,
// e.g. "../Town Hall Q3.vtt" -> "Town_Hall_Q3"
func BaseName(upload string) string {
	name := filepath.Base(strings.ReplaceAll(upload, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	base := strings.Trim(sb.String(), "._")
	if base == "" {
		return "subtitles"
	}
	return base
}

// FileName names the translated output for one language: "<base>.<lang>.vtt"
func FileName(base, lang string) string {
	return fmt.Sprintf("%s.%s.vtt", base, lang)
}

// Write zips files into w in the given order. Names must be unique.
func Write(w io.Writer, files []File, modified time.Time) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate archive entry %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Data); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}
