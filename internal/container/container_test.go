package container

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for rel, data := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func readTree(t *testing.T, root string) map[string][]byte {
	t.Helper()
	out := map[string][]byte{}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}

var testParts = map[string][]byte{
	"[Content_Types].xml": []byte(`<?xml version="1.0"?><Types/>`),
	"_rels/.rels":         []byte(`<?xml version="1.0"?><Relationships/>`),
	"word/document.xml":   []byte(`<w:document xmlns:w="ns"><w:body/></w:document>`),
	"word/media/img1.png": {0x89, 0x50, 0x4e, 0x47, 0x00, 0x01, 0x02},
}

func TestUnpackPackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeTree(t, src, testParts)

	archive := filepath.Join(dir, "doc.docx")
	if err := Pack(src, archive); err != nil {
		t.Fatalf("pack: %v", err)
	}

	dest := filepath.Join(dir, "unpacked")
	if err := Unpack(archive, dest); err != nil {
		t.Fatalf("unpack: %v", err)
	}

	got := readTree(t, dest)
	if len(got) != len(testParts) {
		t.Fatalf("expected %d parts, got %d", len(testParts), len(got))
	}
	for rel, want := range testParts {
		if !bytes.Equal(got[rel], want) {
			t.Errorf("part %s differs after round trip", rel)
		}
	}
}

func TestPackIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeTree(t, src, testParts)

	a := filepath.Join(dir, "a.docx")
	b := filepath.Join(dir, "b.docx")
	if err := Pack(src, a); err != nil {
		t.Fatalf("pack a: %v", err)
	}
	if err := Pack(src, b); err != nil {
		t.Fatalf("pack b: %v", err)
	}

	da, err := os.ReadFile(a)
	if err != nil {
		t.Fatal(err)
	}
	db, err := os.ReadFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(da, db) {
		t.Error("packing the same tree twice produced different archives")
	}
}

func TestUnpackMissingArchiveFails(t *testing.T) {
	err := Unpack(filepath.Join(t.TempDir(), "nope.docx"), t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing archive")
	}
}

func TestPackDoesNotLeaveCorruptOutputOnError(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.docx")
	// Source directory does not exist: pack must fail and must not create
	// the target file.
	if err := Pack(filepath.Join(dir, "missing"), target); err == nil {
		t.Fatal("expected error for missing source dir")
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("failed pack left output file behind")
	}
}

func TestReadPart(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeTree(t, src, testParts)
	archive := filepath.Join(dir, "doc.docx")
	if err := Pack(src, archive); err != nil {
		t.Fatalf("pack: %v", err)
	}

	data, err := ReadPart(archive, "word/document.xml")
	if err != nil {
		t.Fatalf("read part: %v", err)
	}
	if !bytes.Equal(data, testParts["word/document.xml"]) {
		t.Error("part bytes differ")
	}

	if _, err := ReadPart(archive, "word/absent.xml"); err == nil {
		t.Error("expected error for missing part")
	}
}
