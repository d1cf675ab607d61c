package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/waikato-datamining/kasperl/internal/record"
	"github.com/waikato-datamining/kasperl/internal/session"
)

// setup parses the writer options and initializes it against a fresh
// session.
func setup(t *testing.T, w Writer, args ...string) *session.Session {
	t.Helper()
	sess := session.New()
	setupWith(t, w, sess, args...)
	return sess
}

func setupWith(t *testing.T, w Writer, sess *session.Session, args ...string) {
	t.Helper()
	if err := w.ParseArgs(args); err != nil {
		t.Fatalf("ParseArgs(%v) failed: %v", args, err)
	}
	if err := w.Init(sess); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}

func TestConsole(t *testing.T) {
	w := NewConsole().(*Console)
	buf := &bytes.Buffer{}
	w.out = buf
	setup(t, w)

	if err := w.WriteRecord("plain line"); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRecord(record.NewFileRecord("/d/a.txt")); err != nil {
		t.Fatal(err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || lines[0] != "plain line" || lines[1] != "a.txt" {
		t.Errorf("unexpected console output: %q", lines)
	}
}

func TestConsolePrefix(t *testing.T) {
	w := NewConsole().(*Console)
	buf := &bytes.Buffer{}
	w.out = buf
	setup(t, w, "--prefix", "out: ")

	if err := w.WriteRecord("hello"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "out: hello" {
		t.Errorf("output = %q, want %q", got, "out: hello")
	}
}

func TestToTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	w := NewToTextFile()
	sess := session.New()
	sess.SetPlaceholder("OUT", dir)
	setupWith(t, w, sess, "--output", "{OUT}/out.txt")

	sw := w.(StreamWriter)
	for _, line := range []string{"first", "second"} {
		if err := sw.WriteRecord(line); err != nil {
			t.Fatal(err)
		}
	}
	if err := sw.Finalize(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first\nsecond\n" {
		t.Errorf("unexpected file contents: %q", string(data))
	}
}

func TestToTextFileAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewToTextFile()
	setup(t, w, "--output", path, "--append")
	sw := w.(StreamWriter)
	if err := sw.WriteRecord("added"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "existing\nadded\n" {
		t.Errorf("unexpected file contents: %q", string(data))
	}
}

func TestToStorage(t *testing.T) {
	w := NewToStorage()
	sess := setup(t, w, "--key", "results")

	sw := w.(StreamWriter)
	sw.WriteRecord("a")
	sw.WriteRecord("b")
	if err := sw.Finalize(); err != nil {
		t.Fatal(err)
	}

	stored, ok := sess.Storage()["results"].([]record.Record)
	if !ok || len(stored) != 2 {
		t.Fatalf("expected 2 stored records, got %v", sess.Storage()["results"])
	}
}

func TestDeleteFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewDeleteFiles()
	setup(t, w)
	sw := w.(StreamWriter)

	if err := sw.WriteRecord(record.NewFileRecord(path)); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should have been deleted")
	}

	// sourceless records are ignored
	if err := sw.WriteRecord("plain"); err != nil {
		t.Errorf("sourceless record should be skipped: %v", err)
	}

	// missing file errors unless --missing-ok
	if err := sw.WriteRecord(record.NewFileRecord(path)); err == nil {
		t.Error("expected error for missing file")
	}

	tolerant := NewDeleteFiles()
	setup(t, tolerant, "--missing-ok")
	if err := tolerant.(StreamWriter).WriteRecord(record.NewFileRecord(path)); err != nil {
		t.Errorf("--missing-ok should ignore the missing file: %v", err)
	}
}

func TestCopyFiles(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()
	path := filepath.Join(srcDir, "a.txt")
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewCopyFiles()
	setup(t, w, "--dir", dstDir)
	sw := w.(StreamWriter)

	if err := sw.WriteRecord(record.NewFileRecord(path)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dstDir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected copy contents: %q", string(data))
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("source file must remain after copy")
	}
}

func TestCopyFilesSplitsByMetadata(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	w := NewCopyFiles()
	setup(t, w, "--dir", dstDir)
	sw := w.(StreamWriter)

	for i, subset := range []string{"train", "test"} {
		path := filepath.Join(srcDir, string(rune('a'+i))+".txt")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		rec := record.NewFileRecord(path)
		rec.SetMetaData(map[string]interface{}{"split": subset})
		if err := sw.WriteRecord(rec); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := os.Stat(filepath.Join(dstDir, "train", "a.txt")); err != nil {
		t.Errorf("expected a.txt in train subset: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dstDir, "test", "b.txt")); err != nil {
		t.Errorf("expected b.txt in test subset: %v", err)
	}
}

func TestToYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")

	w := NewToYAMLFile()
	setup(t, w, "--output", path)

	rec := record.NewFileRecord("/d/a.txt")
	rec.SetMetaData(map[string]interface{}{"k": "v"})
	if err := w.(BatchWriter).WriteBatch([]record.Record{rec, "plain"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var docs []interface{}
	if err := yaml.Unmarshal(data, &docs); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	first, ok := docs[0].(map[string]interface{})
	if !ok || first["name"] != "a.txt" {
		t.Errorf("unexpected first document: %v", docs[0])
	}
}

func TestToYAMLFileSplitsWithOwnSplitter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	w := NewToYAMLFile()
	setup(t, w, "--output", path,
		"--split-names", "train,test", "--split-ratios", "1,1")

	records := []record.Record{"a", "b", "c", "d"}
	if err := w.(BatchWriter).WriteBatch(records); err != nil {
		t.Fatal(err)
	}

	for _, variant := range []string{"train", "test"} {
		target := filepath.Join(dir, "out-"+variant+".yaml")
		data, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("expected variant file %s: %v", target, err)
		}
		var docs []interface{}
		if err := yaml.Unmarshal(data, &docs); err != nil {
			t.Fatal(err)
		}
		if len(docs) != 2 {
			t.Errorf("expected 2 records in %s, got %d", variant, len(docs))
		}
	}
}

func TestVariantPath(t *testing.T) {
	tests := []struct {
		path    string
		variant string
		want    string
	}{
		{"/d/out.yaml", "train", "/d/out-train.yaml"},
		{"/d/out.yaml", "", "/d/out.yaml"},
		{"/d/out", "test", "/d/out-test"},
	}
	for _, tt := range tests {
		if got := variantPath(tt.path, tt.variant); got != tt.want {
			t.Errorf("variantPath(%q, %q) = %q, want %q", tt.path, tt.variant, got, tt.want)
		}
	}
}
