package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testConfig writes a config that points the file backend at a temp dir.
func testConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "store:\n  backend: file\n  path: " + filepath.Join(dir, "data") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runApp(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	err := app.Run(context.Background(), append([]string{"pocketnotes", "-c", cfgPath}, args...))
	return out.String(), err
}

func TestCLI_AddListShowEditRm(t *testing.T) {
	cfg := testConfig(t)

	out, err := runApp(t, cfg, "", "add", "--title", "Groceries", "--content", "Milk, eggs", "--tags", "home, errands, food")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("add printed no id")
	}

	out, err = runApp(t, cfg, "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "Groceries") || !strings.Contains(out, "[home errands +1]") {
		t.Errorf("list output = %q", out)
	}

	out, err = runApp(t, cfg, "", "edit", "--content", "Milk, eggs, bread", id)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "Milk, eggs, bread") {
		t.Errorf("edit output = %q", out)
	}

	out, err = runApp(t, cfg, "", "edit", "--title", "Groceries", id)
	if err != nil {
		t.Fatalf("edit unchanged: %v", err)
	}
	if !strings.Contains(out, "No changes.") {
		t.Errorf("edit unchanged output = %q", out)
	}

	out, err = runApp(t, cfg, "", "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "tags:    home, errands, food") {
		t.Errorf("show output = %q", out)
	}

	out, err = runApp(t, cfg, "n\n", "rm", id)
	if err != nil {
		t.Fatalf("rm declined: %v", err)
	}
	if !strings.Contains(out, "Cancelled.") {
		t.Errorf("rm declined output = %q", out)
	}

	out, err = runApp(t, cfg, "y\n", "rm", id)
	if err != nil {
		t.Fatalf("rm: %v", err)
	}
	if !strings.Contains(out, "Deleted.") {
		t.Errorf("rm output = %q", out)
	}

	if _, err := runApp(t, cfg, "", "show", id); err == nil {
		t.Error("show after rm succeeded")
	}
}

func TestCLI_AddRejectsBlank(t *testing.T) {
	cfg := testConfig(t)
	if _, err := runApp(t, cfg, "", "add", "--title", "  "); err == nil {
		t.Fatal("add with blank title and content succeeded")
	}
}

func TestCLI_AddUntitled(t *testing.T) {
	cfg := testConfig(t)
	out, err := runApp(t, cfg, "", "add", "--content", "just a body")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	id := strings.TrimSpace(out)

	out, err = runApp(t, cfg, "", "show", id)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(out, "Untitled\n") {
		t.Errorf("show output = %q", out)
	}
}

func TestCLI_RmYesAndMissing(t *testing.T) {
	cfg := testConfig(t)
	out, _ := runApp(t, cfg, "", "add", "--title", "x")
	id := strings.TrimSpace(out)

	out, err := runApp(t, cfg, "", "rm", "--yes", id)
	if err != nil || !strings.Contains(out, "Deleted.") {
		t.Fatalf("rm --yes = %q, %v", out, err)
	}

	out, err = runApp(t, cfg, "", "rm", "--yes", id)
	if err != nil || !strings.Contains(out, "Note not found.") {
		t.Errorf("rm missing = %q, %v", out, err)
	}
}

func TestCLI_ListEmpty(t *testing.T) {
	out, err := runApp(t, testConfig(t), "", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No notes yet") {
		t.Errorf("list output = %q", out)
	}
}

func TestCLI_ShowRequiresID(t *testing.T) {
	if _, err := runApp(t, testConfig(t), "", "show"); err == nil {
		t.Fatal("show without id succeeded")
	}
}
