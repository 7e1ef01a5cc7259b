// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fakeRuntime implements container.Runtime for testing without docker.
type fakeRuntime struct {
	rtName   string
	imageErr error
	runFunc  func(stdin io.Reader, stdout io.Writer) error
	gotImage string
	gotArgs  []string
}

func (f *fakeRuntime) Name() string {
	if f.rtName == "" {
		return "docker"
	}
	return f.rtName
}

func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ context.Context, image string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotImage = image
	f.gotArgs = args
	if f.runFunc != nil {
		return f.runFunc(stdin, stdout)
	}
	return nil
}

// writeDoc drops a file with the given name into a temp dir and returns its path.
func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewMarkitdownEngine_ImageMissing(t *testing.T) {
	rt := &fakeRuntime{rtName: "podman", imageErr: errors.New("no such image")}

	_, err := NewMarkitdownEngine(rt, "")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "podman") {
		t.Errorf("error should name the runtime, got: %v", err)
	}
}

func TestMarkitdownEngine_DefaultImage(t *testing.T) {
	rt := &fakeRuntime{}
	eng, err := NewMarkitdownEngine(rt, "")
	if err != nil {
		t.Fatalf("NewMarkitdownEngine: %v", err)
	}

	if _, err := eng.Convert(context.Background(), writeDoc(t, "a.pdf", "pdf")); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if rt.gotImage != DefaultImage {
		t.Errorf("image = %q, want %q", rt.gotImage, DefaultImage)
	}
}

func TestMarkitdownEngine_CustomImage(t *testing.T) {
	rt := &fakeRuntime{}
	eng, err := NewMarkitdownEngine(rt, "markitdown:v2")
	if err != nil {
		t.Fatalf("NewMarkitdownEngine: %v", err)
	}

	if _, err := eng.Convert(context.Background(), writeDoc(t, "a.pdf", "pdf")); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if rt.gotImage != "markitdown:v2" {
		t.Errorf("image = %q, want %q", rt.gotImage, "markitdown:v2")
	}
}

func TestMarkitdownEngine_ExtensionHint(t *testing.T) {
	rt := &fakeRuntime{
		runFunc: func(stdin io.Reader, stdout io.Writer) error {
			io.Copy(io.Discard, stdin)
			_, err := stdout.Write([]byte("# Converted"))
			return err
		},
	}
	eng, err := NewMarkitdownEngine(rt, "")
	if err != nil {
		t.Fatalf("NewMarkitdownEngine: %v", err)
	}

	text, err := eng.Convert(context.Background(), writeDoc(t, "memo.docx", "pk-zip"))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if text != "# Converted" {
		t.Errorf("text = %q, want %q", text, "# Converted")
	}
	if want := []string{"-x", ".docx"}; !reflect.DeepEqual(rt.gotArgs, want) {
		t.Errorf("args = %v, want %v", rt.gotArgs, want)
	}
}

func TestMarkitdownEngine_NoExtensionNoHint(t *testing.T) {
	rt := &fakeRuntime{}
	eng, err := NewMarkitdownEngine(rt, "")
	if err != nil {
		t.Fatalf("NewMarkitdownEngine: %v", err)
	}

	if _, err := eng.Convert(context.Background(), writeDoc(t, "README", "text")); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(rt.gotArgs) != 0 {
		t.Errorf("args = %v, want none for extensionless input", rt.gotArgs)
	}
}

func TestMarkitdownEngine_EmptyOutputIsNotAnError(t *testing.T) {
	rt := &fakeRuntime{
		runFunc: func(stdin io.Reader, _ io.Writer) error {
			io.Copy(io.Discard, stdin)
			return nil
		},
	}
	eng, err := NewMarkitdownEngine(rt, "")
	if err != nil {
		t.Fatalf("NewMarkitdownEngine: %v", err)
	}

	text, err := eng.Convert(context.Background(), writeDoc(t, "empty.pdf", "pdf"))
	if err != nil {
		t.Fatalf("empty output should not error here, got: %v", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestMarkitdownEngine_RunError(t *testing.T) {
	rt := &fakeRuntime{
		runFunc: func(io.Reader, io.Writer) error {
			return errors.New("exit status 1: unsupported format")
		},
	}
	eng, err := NewMarkitdownEngine(rt, "")
	if err != nil {
		t.Fatalf("NewMarkitdownEngine: %v", err)
	}

	_, err = eng.Convert(context.Background(), writeDoc(t, "bad.xlsx", "junk"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bad.xlsx") {
		t.Errorf("error should name the document, got: %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error should carry the runtime failure, got: %v", err)
	}
}
