// Package reader provides record sources for the pipeline.
package reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/waikato-datamining/kasperl/internal/errhandling"
	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// drain reads the full pass of a reader.
func drain(t *testing.T, r Reader) []record.Record {
	t.Helper()
	var records []record.Record
	for !r.HasFinished() {
		chunk, err := r.Read(context.Background())
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		records = append(records, chunk...)
	}
	return records
}

// TestListFiles tests the directory listing reader.
func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", "c.png"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	t.Run("forwards sorted file records", func(t *testing.T) {
		r := NewListFiles()
		if err := r.ParseArgs([]string{"--dir", dir}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 3 {
			t.Fatalf("len(records) = %d, want 3", len(records))
		}
		names := []string{"a.txt", "b.txt", "c.png"}
		for i, want := range names {
			name, ok := record.NameOf(records[i])
			if !ok || name != want {
				t.Errorf("records[%d] name = %q, want %q", i, name, want)
			}
		}
	})

	t.Run("regexp filters by name", func(t *testing.T) {
		r := NewListFiles()
		if err := r.ParseArgs([]string{"--dir", dir, "--regexp", `\.txt$`}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 2 {
			t.Errorf("len(records) = %d, want 2", len(records))
		}
	})

	t.Run("as-list forwards one slice record", func(t *testing.T) {
		r := NewListFiles()
		if err := r.ParseArgs([]string{"--dir", dir, "--as-list"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
		list, ok := records[0].([]record.Record)
		if !ok {
			t.Fatalf("records[0] = %T, want []record.Record", records[0])
		}
		if len(list) != 3 {
			t.Errorf("len(list) = %d, want 3", len(list))
		}
	})

	t.Run("placeholder in dir", func(t *testing.T) {
		sess := session.New()
		sess.SetPlaceholder("DATA", dir)

		r := NewListFiles()
		if err := r.ParseArgs([]string{"--dir", "{DATA}"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(sess); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		if records := drain(t, r); len(records) != 3 {
			t.Errorf("len(records) = %d, want 3", len(records))
		}
	})

	t.Run("recursive descends into subdirectories", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "sub", "d.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := NewListFiles()
		if err := r.ParseArgs([]string{"--dir", dir, "--recursive", "--regexp", `\.txt$`}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		if records := drain(t, r); len(records) != 3 {
			t.Errorf("len(records) = %d, want 3", len(records))
		}
	})

	t.Run("bad regexp rejected", func(t *testing.T) {
		r := NewListFiles()
		err := r.ParseArgs([]string{"--dir", dir, "--regexp", "("})
		if !errors.Is(err, errhandling.ErrConfiguration) {
			t.Errorf("ParseArgs() error = %v, want configuration error", err)
		}
	})
}

// TestFromTextFile tests the line reader.
func TestFromTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.txt")
	if err := os.WriteFile(path, []byte("one\n\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("forwards lines as string records", func(t *testing.T) {
		r := NewFromTextFile()
		if err := r.ParseArgs([]string{"--input", path}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		want := []string{"one", "", "two", "three"}
		if len(records) != len(want) {
			t.Fatalf("len(records) = %d, want %d", len(records), len(want))
		}
		for i, w := range want {
			if records[i] != w {
				t.Errorf("records[%d] = %v, want %q", i, records[i], w)
			}
		}
	})

	t.Run("skip-empty drops blank lines", func(t *testing.T) {
		r := NewFromTextFile()
		if err := r.ParseArgs([]string{"--input", path, "--skip-empty"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		if records := drain(t, r); len(records) != 3 {
			t.Errorf("len(records) = %d, want 3", len(records))
		}
	})

	t.Run("chunked reading preserves order", func(t *testing.T) {
		r := NewFromTextFile()
		if err := r.ParseArgs([]string{"--input", path, "--chunk", "2"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		first, err := r.Read(context.Background())
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if len(first) != 2 {
			t.Errorf("first chunk = %d records, want 2", len(first))
		}
		if r.HasFinished() {
			t.Error("HasFinished() = true after first chunk, want false")
		}
		rest := drain(t, r)
		if len(first)+len(rest) != 4 {
			t.Errorf("total records = %d, want 4", len(first)+len(rest))
		}
	})

	t.Run("missing file fails at init", func(t *testing.T) {
		r := NewFromTextFile()
		if err := r.ParseArgs([]string{"--input", "/no/such/file.txt"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); !errors.Is(err, errhandling.ErrIO) {
			t.Errorf("Init() error = %v, want io error", err)
		}
	})
}

// TestStart tests the single-record reader.
func TestStart(t *testing.T) {
	r := NewStart()
	if err := r.ParseArgs(nil); err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if err := r.Init(session.New()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer r.Close()

	records := drain(t, r)
	if len(records) != 1 || records[0] != "start" {
		t.Errorf("records = %v, want single \"start\" record", records)
	}
}

// TestFromStorage tests the session storage reader.
func TestFromStorage(t *testing.T) {
	t.Run("single stored value", func(t *testing.T) {
		sess := session.New()
		sess.Storage()["item"] = "stored"

		r := NewFromStorage()
		if err := r.ParseArgs([]string{"--key", "item"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(sess); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 1 || records[0] != "stored" {
			t.Errorf("records = %v, want single stored record", records)
		}
	})

	t.Run("stored record slice fans out", func(t *testing.T) {
		sess := session.New()
		sess.Storage()["items"] = []record.Record{"a", "b"}

		r := NewFromStorage()
		if err := r.ParseArgs([]string{"--key", "items"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(sess); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		if records := drain(t, r); len(records) != 2 {
			t.Errorf("len(records) = %d, want 2", len(records))
		}
	})

	t.Run("missing key fails", func(t *testing.T) {
		r := NewFromStorage()
		if err := r.ParseArgs([]string{"--key", "absent"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		_, err := r.Read(context.Background())
		if !errors.Is(err, errhandling.ErrConfiguration) {
			t.Errorf("Read() error = %v, want configuration error", err)
		}
	})
}

// TestPollDir tests the polling reader.
func TestPollDir(t *testing.T) {
	t.Run("forwards existing files immediately", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "job.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", dir, "--timeout", "1", "--interval", "10ms"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
		if name, _ := record.NameOf(records[0]); name != "job.txt" {
			t.Errorf("record name = %q, want job.txt", name)
		}
	})

	t.Run("extension filter", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{"a.txt", "b.csv"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
				t.Fatal(err)
			}
		}

		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", dir, "--ext", ".csv", "--timeout", "1", "--interval", "10ms"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
		if name, _ := record.NameOf(records[0]); name != "b.csv" {
			t.Errorf("record name = %q, want b.csv", name)
		}
	})

	t.Run("picks up files appearing later", func(t *testing.T) {
		dir := t.TempDir()

		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", dir, "--timeout", "5", "--interval", "20ms"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		go func() {
			time.Sleep(60 * time.Millisecond)
			os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0o644)
		}()

		records := drain(t, r)
		if len(records) != 1 {
			t.Errorf("len(records) = %d, want 1", len(records))
		}
	})

	t.Run("timeout exhaustion reports timeout error", func(t *testing.T) {
		dir := t.TempDir()

		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", dir, "--timeout", "0", "--interval", "10ms"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		_, err := r.Read(context.Background())
		if !errors.Is(err, errhandling.ErrTimeout) {
			t.Errorf("Read() error = %v, want timeout error", err)
		}
	})

	t.Run("delete action removes picked-up files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "job.txt")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", dir, "--action", "delete", "--timeout", "1", "--interval", "10ms"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		drain(t, r)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("picked-up file still exists, want deleted")
		}
	})

	t.Run("move action relocates and updates source", func(t *testing.T) {
		dir := t.TempDir()
		out := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "job.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := NewPollDir()
		args := []string{"--dir", dir, "--dir-out", out, "--action", "move", "--timeout", "1", "--interval", "10ms"}
		if err := r.ParseArgs(args); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
		source, _ := record.SourceOf(records[0])
		if source != filepath.Join(out, "job.txt") {
			t.Errorf("source = %q, want moved path", source)
		}
		if _, err := os.Stat(filepath.Join(out, "job.txt")); err != nil {
			t.Errorf("moved file missing: %v", err)
		}
	})

	t.Run("unbounded with max-passes zero", func(t *testing.T) {
		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", t.TempDir(), "--max-passes", "0"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if !IsUnbounded(r) {
			t.Error("IsUnbounded() = false, want true for --max-passes 0")
		}
	})

	t.Run("move without dir-out rejected", func(t *testing.T) {
		r := NewPollDir()
		err := r.ParseArgs([]string{"--dir", t.TempDir(), "--action", "move"})
		if !errors.Is(err, errhandling.ErrConfiguration) {
			t.Errorf("ParseArgs() error = %v, want configuration error", err)
		}
	})

	t.Run("sub-millisecond interval", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "job.txt"), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}

		r := NewPollDir()
		if err := r.ParseArgs([]string{"--dir", dir, "--timeout", "1", "--interval", "500us"}); err != nil {
			t.Fatalf("ParseArgs() error = %v", err)
		}
		if err := r.Init(session.New()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer r.Close()

		records := drain(t, r)
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
	})
}
