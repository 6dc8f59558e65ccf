package processor

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nguyentantai21042004/voice-note/internal/apperr"
	"github.com/nguyentantai21042004/voice-note/internal/config"
	"github.com/nguyentantai21042004/voice-note/internal/credential"
	"github.com/nguyentantai21042004/voice-note/internal/engine"
	"github.com/nguyentantai21042004/voice-note/internal/engine/enginetest"
	"github.com/nguyentantai21042004/voice-note/internal/export"
	"github.com/nguyentantai21042004/voice-note/internal/intake"
	"github.com/nguyentantai21042004/voice-note/internal/logger"
	"github.com/nguyentantai21042004/voice-note/internal/pipeline"
)

type fixture struct {
	cfg  *config.Config
	srv  *enginetest.Server
	proc Processor
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	srv := enginetest.New()
	t.Cleanup(srv.Close)

	root := t.TempDir()
	cfg := &config.Config{
		Engine: config.EngineConfig{BaseURL: srv.URL},
		Paths: config.PathsConfig{
			Input:    filepath.Join(root, "input"),
			Output:   filepath.Join(root, "output"),
			Archived: filepath.Join(root, "archived"),
		},
		Logging: config.LoggingConfig{Level: "error"},
	}
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := os.MkdirAll(cfg.Paths.Input, 0755); err != nil {
		t.Fatal(err)
	}

	log := logger.New("error", "text")
	v := intake.New(cfg.Intake.Extensions)
	client := engine.New(cfg.Engine.BaseURL, log)
	profile := engine.ProfileLocal
	if cfg.Transcription.Profile == config.ProfileGCP {
		profile = engine.ProfileCredential
	}
	newSession := func() pipeline.Session {
		return pipeline.New(v, client, log, pipeline.WithProfile(profile))
	}

	return &fixture{
		cfg:  cfg,
		srv:  srv,
		proc: New(cfg, v, newSession, export.New(cfg.Paths.Output, log), log),
	}
}

func (f *fixture) drop(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.cfg.Paths.Input, name)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProcess(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Pipeline.Refine = true })
	path := f.drop(t, "lecture.mp4")

	if err := f.proc.Process(context.Background(), path); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	out := filepath.Join(f.cfg.Paths.Output, "lecture")
	for _, name := range []string{"transcription.txt", "refined.txt", "lecture.md", "lecture.docx"} {
		if !exists(filepath.Join(out, name)) {
			t.Errorf("%s was not exported", name)
		}
	}
	if exists(path) {
		t.Error("source should be moved out of the inbox")
	}
	if !exists(filepath.Join(f.cfg.Paths.Archived, "lecture.mp4")) {
		t.Error("source should be archived")
	}

	// Generation uses the refined text.
	if got := f.srv.LLMCalls(enginetest.PathGenerateNote)[0].Transcript; got != "refined text" {
		t.Errorf("generate sent %q", got)
	}
	want := map[string]string{"model_size": "base"}
	if diff := cmp.Diff(want, f.srv.TranscribeCalls()[0].Fields); diff != "" {
		t.Errorf("transcribe fields mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRefineFailureFallsBack(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Pipeline.Refine = true })
	f.srv.Respond(enginetest.PathRefineText, enginetest.Response{Status: http.StatusInternalServerError})
	path := f.drop(t, "memo.wav")

	if err := f.proc.Process(context.Background(), path); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := f.srv.LLMCalls(enginetest.PathGenerateNote)[0].Transcript; got != "transcribed text" {
		t.Errorf("generate sent %q, want raw transcript", got)
	}
	if exists(filepath.Join(f.cfg.Paths.Output, "memo", "refined.txt")) {
		t.Error("refined.txt should not be written when refinement failed")
	}
}

func TestProcessWithoutRefine(t *testing.T) {
	f := newFixture(t, nil)
	path := f.drop(t, "memo.ogg")

	if err := f.proc.Process(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	if n := len(f.srv.LLMCalls(enginetest.PathRefineText)); n != 0 {
		t.Errorf("refine calls = %d, want 0", n)
	}
}

func TestProcessFailures(t *testing.T) {
	t.Run("unsupported file", func(t *testing.T) {
		f := newFixture(t, nil)
		path := f.drop(t, "notes.txt")

		if err := f.proc.Process(context.Background(), path); err == nil {
			t.Fatal("Process() should reject a .txt file")
		}
		if f.srv.Calls() != 0 {
			t.Errorf("engine calls = %d, want 0", f.srv.Calls())
		}
		if !exists(path) {
			t.Error("rejected file must stay in the inbox")
		}
	})

	t.Run("engine rejects transcription", func(t *testing.T) {
		f := newFixture(t, nil)
		f.srv.Respond(enginetest.PathTranscribe, enginetest.JSON(http.StatusBadRequest, map[string]string{"detail": "bad audio"}))
		path := f.drop(t, "a.mp3")

		if err := f.proc.Process(context.Background(), path); err == nil {
			t.Fatal("Process() should fail")
		}
		if n := len(f.srv.LLMCalls(enginetest.PathGenerateNote)); n != 0 {
			t.Errorf("generate calls = %d, want 0", n)
		}
		if !exists(path) {
			t.Error("failed file must stay in the inbox")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.proc.Process(context.Background(), filepath.Join(f.cfg.Paths.Input, "gone.mp3")); err == nil {
			t.Fatal("Process() should fail for a missing file")
		}
	})
}

func TestProcessCredentialProfile(t *testing.T) {
	credPath := filepath.Join(t.TempDir(), "sa.json")
	doc := `{"type":"service_account","client_email":"svc@example.com"}`
	if err := os.WriteFile(credPath, []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, func(c *config.Config) {
		c.Transcription.Profile = config.ProfileGCP
		c.Transcription.CredentialsFile = credPath
	})
	path := f.drop(t, "a.mp3")

	if err := f.proc.Process(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"credentials_json": doc}
	if diff := cmp.Diff(want, f.srv.TranscribeCalls()[0].Fields); diff != "" {
		t.Errorf("transcribe fields mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessAll(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Performance.MaxConcurrent = 2 })
	f.drop(t, "b.mp3")
	f.drop(t, "a.wav")
	f.drop(t, "notes.txt")
	f.drop(t, ".hidden.mp3")

	paths, err := f.proc.Discover(f.cfg.Paths.Input)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(f.cfg.Paths.Input, "a.wav"),
		filepath.Join(f.cfg.Paths.Input, "b.mp3"),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("Discover() mismatch (-want +got):\n%s", diff)
	}

	if err := f.proc.ProcessAll(context.Background(), paths); err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}
	for _, stem := range []string{"a", "b"} {
		if !exists(filepath.Join(f.cfg.Paths.Output, stem, stem+".md")) {
			t.Errorf("%s.md missing", stem)
		}
	}
	if got := len(f.srv.TranscribeCalls()); got != 2 {
		t.Errorf("transcribe calls = %d, want 2", got)
	}
}

func TestProcessAllReportsFailures(t *testing.T) {
	f := newFixture(t, nil)
	f.srv.Respond(enginetest.PathGenerateNote,
		enginetest.JSON(http.StatusOK, map[string]string{"title": "T", "content": "C"}),
		enginetest.JSON(http.StatusBadGateway, map[string]string{"detail": "down"}),
	)
	paths := []string{f.drop(t, "a.mp3"), f.drop(t, "b.mp3")}

	if err := f.proc.ProcessAll(context.Background(), paths); err == nil {
		t.Fatal("ProcessAll() should report the failed file")
	}
}

func TestArchiveNameCollision(t *testing.T) {
	f := newFixture(t, nil)
	if err := os.MkdirAll(f.cfg.Paths.Archived, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.cfg.Paths.Archived, "a.mp3"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	p := f.proc.(*implProcessor)
	// Several same-named sources archived within one second must all survive.
	for i := 0; i < 3; i++ {
		path := f.drop(t, "a.mp3")
		if err := p.moveToArchived(context.Background(), path); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(f.cfg.Paths.Archived)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 4 {
		t.Errorf("archived entries = %d, want 4", len(entries))
	}
	old, _ := os.ReadFile(filepath.Join(f.cfg.Paths.Archived, "a.mp3"))
	if string(old) != "old" {
		t.Error("existing archived file was overwritten")
	}
}

func TestFreeArchivePath(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 11, 12, 0, time.UTC)

	var got []string
	for i := 0; i < 4; i++ {
		dest, err := freeArchivePath(dir, "memo.wav", now)
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(dest, nil, 0644); err != nil {
			t.Fatal(err)
		}
		got = append(got, filepath.Base(dest))
	}

	want := []string{
		"memo.wav",
		"memo_20260504-101112.wav",
		"memo_20260504-101112_2.wav",
		"memo_20260504-101112_3.wav",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("archive names mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessInvalidCredentialFile(t *testing.T) {
	credPath := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(credPath, []byte(`{"type":"authorized_user"}`), 0600); err != nil {
		t.Fatal(err)
	}

	f := newFixture(t, func(c *config.Config) {
		c.Transcription.Profile = config.ProfileGCP
		c.Transcription.CredentialsFile = credPath
	})
	path := f.drop(t, "a.mp3")

	err := f.proc.Process(context.Background(), path)
	if got := apperr.MessageOf(err); got != credential.MsgInvalidAccount {
		t.Errorf("Process() error = %v, want %q", err, credential.MsgInvalidAccount)
	}
	if f.srv.Calls() != 0 {
		t.Errorf("engine calls = %d, want 0", f.srv.Calls())
	}
}

func TestSemaphore(t *testing.T) {
	s := newSemaphore(1)
	ctx := context.Background()
	if err := s.acquire(ctx); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.acquire(cancelled); err == nil {
		t.Error("acquire() on a full semaphore with a cancelled context should fail")
	}

	s.release()
	if err := s.acquire(ctx); err != nil {
		t.Errorf("acquire() after release error = %v", err)
	}
}
