package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

func TestAttachMetadata(t *testing.T) {
	dir := t.TempDir()
	sidecar := filepath.Join(dir, "cat.json")
	if err := os.WriteFile(sidecar, []byte(`{"species": "cat", "count": 3}`), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewAttachMetadata()
	setup(t, f, "--dir", dir)

	out := process(t, f, fileRec("/data/cat.png", nil))
	if value, _ := record.MetaValue(out[0], "species"); value != "cat" {
		t.Errorf("expected species=cat, got %v", value)
	}
	if value, _ := record.MetaValue(out[0], "count"); value != float64(3) {
		t.Errorf("expected count=3, got %v", value)
	}

	// no sidecar: record passes untouched
	out = process(t, f, fileRec("/data/dog.png", nil))
	if _, ok := record.MetaValue(out[0], "species"); ok {
		t.Error("record without sidecar must not gain metadata")
	}
}

func TestAttachMetadataKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"k": "sidecar"}`), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewAttachMetadata()
	setup(t, f, "--dir", dir)

	rec := fileRec("/d/a.txt", map[string]interface{}{"k": "original"})
	out := process(t, f, rec)
	if value, _ := record.MetaValue(out[0], "k"); value != "original" {
		t.Errorf("existing key should win without --force, got %v", value)
	}
}

func TestLogData(t *testing.T) {
	dir := t.TempDir()
	trace := filepath.Join(dir, "trace.log")

	f := NewLogData()
	setup(t, f, "--format", "{NAME} from {SOURCE} batch={META.batch}", "--output", trace)

	rec := fileRec("/data/a.txt", map[string]interface{}{"batch": "b1"})
	out := process(t, f, rec)
	if len(out) != 1 {
		t.Fatal("log-data must forward the record")
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(trace)
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(data))
	if line != "a.txt from /data/a.txt batch=b1" {
		t.Errorf("unexpected trace line: %q", line)
	}
}

func TestListToSequence(t *testing.T) {
	f := NewListToSequence()
	setup(t, f)

	list := []record.Record{
		record.NewFileRecord("/d/a.txt"),
		record.NewFileRecord("/d/b.txt"),
	}
	out := process(t, f, record.Record(list))
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}

	// non-slice records pass through
	out = process(t, f, "plain")
	if len(out) != 1 || out[0] != record.Record("plain") {
		t.Errorf("non-slice record should pass unchanged, got %v", out)
	}
}

func TestSetStorage(t *testing.T) {
	t.Run("last wins", func(t *testing.T) {
		f := NewSetStorage()
		sess := setup(t, f, "--key", "latest")

		process(t, f, "first")
		process(t, f, "second")
		if sess.Storage()["latest"] != record.Record("second") {
			t.Errorf("expected last record stored, got %v", sess.Storage()["latest"])
		}
	})

	t.Run("append collects", func(t *testing.T) {
		f := NewSetStorage()
		sess := setup(t, f, "--key", "all", "--append")

		process(t, f, "first")
		process(t, f, "second")
		stored, ok := sess.Storage()["all"].([]record.Record)
		if !ok || len(stored) != 2 {
			t.Fatalf("expected 2 collected records, got %v", sess.Storage()["all"])
		}
	})
}

func TestMoveFiles(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "moved")
	path := filepath.Join(srcDir, "a.txt")
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	f := NewMoveFiles()
	sess := session.New()
	sess.SetPlaceholder("OUT", dstDir)
	setupWith(t, f, sess, "--dir", "{OUT}")

	out := process(t, f, record.NewFileRecord(path))
	moved := filepath.Join(dstDir, "a.txt")
	if source, _ := record.SourceOf(out[0]); source != moved {
		t.Errorf("expected source updated to %s, got %s", moved, source)
	}
	if _, err := os.Stat(moved); err != nil {
		t.Errorf("file should exist at the new location: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone from the old location")
	}

	// records without a source pass untouched
	if out := process(t, f, "plain"); len(out) != 1 {
		t.Errorf("sourceless record should pass, got %v", out)
	}
}

func TestExpression(t *testing.T) {
	tests := []struct {
		name string
		expr string
		rec  record.Record
		kept bool
	}{
		{
			"meta comparison",
			`meta.score > 5`,
			fileRec("/d/a.txt", map[string]interface{}{"score": 7}),
			true,
		},
		{
			"meta comparison fails",
			`meta.score > 5`,
			fileRec("/d/a.txt", map[string]interface{}{"score": 3}),
			false,
		},
		{
			"name predicate",
			`name endsWith ".png"`,
			fileRec("/d/a.png", nil),
			true,
		},
		{
			"missing field is nil",
			`meta.absent == nil`,
			fileRec("/d/a.txt", nil),
			true,
		},
		{
			"string record value",
			`value contains "keep"`,
			"please keep me",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewExpression()
			setup(t, f, "--expression", tt.expr)

			out := process(t, f, tt.rec)
			if kept := len(out) == 1; kept != tt.kept {
				t.Errorf("kept = %v, want %v", kept, tt.kept)
			}
		})
	}

	t.Run("invalid expression", func(t *testing.T) {
		if err := NewExpression().ParseArgs([]string{"--expression", "((("}); err == nil {
			t.Error("expected compile error")
		}
	})
}

func TestScript(t *testing.T) {
	t.Run("rewrites name", func(t *testing.T) {
		f := NewScript()
		setup(t, f, "--script",
			`function transform(record) { record.name = "renamed-" + record.name; return record; }`)

		out := process(t, f, fileRec("/d/a.txt", nil))
		if name, _ := record.NameOf(out[0]); name != "renamed-a.txt" {
			t.Errorf("expected renamed-a.txt, got %q", name)
		}
	})

	t.Run("null drops", func(t *testing.T) {
		f := NewScript()
		setup(t, f, "--script", `function transform(record) { return null; }`)

		if out := process(t, f, fileRec("/d/a.txt", nil)); len(out) != 0 {
			t.Errorf("null return should drop the record, got %v", out)
		}
	})

	t.Run("string return becomes text record", func(t *testing.T) {
		f := NewScript()
		setup(t, f, "--script", `function transform(record) { return record.name.toUpperCase(); }`)

		out := process(t, f, fileRec("/d/a.txt", nil))
		if len(out) != 1 || out[0] != record.Record("A.TXT") {
			t.Errorf("expected text record A.TXT, got %v", out)
		}
	})

	t.Run("script from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "transform.js")
		script := `function transform(record) { record.metadata.touched = true; return record; }`
		if err := os.WriteFile(path, []byte(script), 0644); err != nil {
			t.Fatal(err)
		}

		f := NewScript()
		setup(t, f, "--script-file", path)

		rec := fileRec("/d/a.txt", map[string]interface{}{"existing": "yes"})
		out := process(t, f, rec)
		if value, _ := record.MetaValue(out[0], "touched"); value != true {
			t.Errorf("expected touched=true, got %v", value)
		}
	})

	t.Run("missing transform", func(t *testing.T) {
		if err := NewScript().ParseArgs([]string{"--script", `var x = 1;`}); err == nil {
			t.Error("expected error for script without transform")
		}
	})

	t.Run("both sources rejected", func(t *testing.T) {
		err := NewScript().ParseArgs([]string{"--script", "function transform(r){return r}", "--script-file", "x.js"})
		if err == nil {
			t.Error("expected error for both --script and --script-file")
		}
	})
}
