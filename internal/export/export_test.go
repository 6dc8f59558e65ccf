package export

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/models"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// docxText returns word/document.xml from a saved docx.
func docxText(t *testing.T, path string) string {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open docx %s: %v", path, err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		data, _ := io.ReadAll(rc)
		return string(data)
	}
	t.Fatalf("%s has no word/document.xml", path)
	return ""
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, logger.New("error", "text"))

	doc := Document{
		Name:       "/inbox/lecture.mp4",
		Transcript: models.Transcript{Text: "first block\n\nsecond block"},
		Refined:    &models.RefinedText{Text: "clean text"},
		Note: models.GeneratedNote{
			Title:   "Lecture Notes",
			Content: "## Summary\n\n- point **one**\n1. step",
		},
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	files, err := e.Export(context.Background(), doc)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	out := filepath.Join(dir, "lecture")
	want := Files{
		Dir:            out,
		Transcript:     filepath.Join(out, "transcription.txt"),
		TranscriptDocx: filepath.Join(out, "transcription.docx"),
		Refined:        filepath.Join(out, "refined.txt"),
		Markdown:       filepath.Join(out, "lecture.md"),
		Docx:           filepath.Join(out, "lecture.docx"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("Files mismatch (-want +got):\n%s", diff)
	}

	if got := readFile(t, files.Transcript); got != "first block\n\nsecond block" {
		t.Errorf("transcript = %q", got)
	}
	if got := readFile(t, files.Refined); got != "clean text" {
		t.Errorf("refined = %q", got)
	}

	wantMD := "# Lecture Notes\n\n_2026-03-01 09:30_\n\n## Summary\n\n- point **one**\n1. step\n"
	if got := readFile(t, files.Markdown); got != wantMD {
		t.Errorf("markdown mismatch (-want +got):\n%s", cmp.Diff(wantMD, got))
	}

	body := docxText(t, files.Docx)
	for _, s := range []string{"Lecture Notes", "Summary", "point", "one", "1. step"} {
		if !strings.Contains(body, s) {
			t.Errorf("note docx missing %q", s)
		}
	}
	if strings.Contains(body, "**") || strings.Contains(body, "##") {
		t.Error("note docx still contains markdown markup")
	}

	tbody := docxText(t, files.TranscriptDocx)
	for _, s := range []string{"first block", "second block"} {
		if !strings.Contains(tbody, s) {
			t.Errorf("transcript docx missing %q", s)
		}
	}
}

func TestExportWithoutRefined(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, logger.New("error", "text"))

	files, err := e.Export(context.Background(), Document{
		Name:       "memo.wav",
		Transcript: models.Transcript{Text: "raw"},
		Note:       models.GeneratedNote{Title: "T", Content: "C"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if files.Refined != "" {
		t.Errorf("Refined = %q, want empty", files.Refined)
	}
	if _, err := os.Stat(filepath.Join(dir, "memo", "refined.txt")); !os.IsNotExist(err) {
		t.Error("refined.txt should not be written")
	}
}

func TestExportRequiresName(t *testing.T) {
	e := New(t.TempDir(), logger.New("error", "text"))
	if _, err := e.Export(context.Background(), Document{}); err == nil {
		t.Error("Export() should fail without a name")
	}
}

func TestSplitBlocks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single line", "hello", []string{"hello"}},
		{"joins wrapped lines", "a\nb\n\nc", []string{"a b", "c"}},
		{"extra blank lines", "\n\n a \n\n\n b\n", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, splitBlocks(tt.in)); diff != "" {
				t.Errorf("splitBlocks() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileStem(t *testing.T) {
	tests := map[string]string{
		"lecture.mp4":         "lecture",
		"/a/b/memo.final.wav": "memo.final",
		"noext":               "noext",
		"":                    "",
	}
	for in, want := range tests {
		if got := fileStem(in); got != want {
			t.Errorf("fileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
