package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matthieukhl/quotedesk/internal/intake"
	"github.com/matthieukhl/quotedesk/internal/inventory"
)

// useMockBackend points every command at the offline backend and a
// temporary export directory
func useMockBackend(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QUOTEDESK_BACKEND_PROVIDER", "mock")
	t.Setenv("QUOTEDESK_BACKEND_MOCK_LATENCY", "0s")
	t.Setenv("QUOTEDESK_LOGGER_LEVEL", "error")
	t.Setenv("QUOTEDESK_EXPORT_DIR", dir)
	chdir(t, dir)
	t.Cleanup(func() {
		intakeFile, intakePDF, intakeCustomer, intakeAddress = "", false, "", ""
		newItem = inventory.Draft{Category: inventory.CategoryOther, Unit: inventory.DefaultUnit}
	})
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIntakeCommand(t *testing.T) {
	dir := useMockBackend(t)

	out, err := execute(t, "intake", "2 cctv high quality", "--customer", "Anand Stores", "--pdf")
	if err != nil {
		t.Fatalf("intake: %v\n%s", err, out)
	}
	for _, want := range []string{"Generated 1 items", "Anand Stores", "10000.00", "GST (18%):", "11800.00", "Saved to"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "quotation_QT-*.pdf"))
	if len(matches) != 1 {
		t.Fatalf("expected one exported PDF, got %v", matches)
	}
}

func TestIntakeCommand_FromFile(t *testing.T) {
	dir := useMockBackend(t)
	path := filepath.Join(dir, "visit.txt")
	if err := os.WriteFile(path, []byte("1 nvr 16 channel\ninstallation\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "intake", "--file", path)
	if err != nil {
		t.Fatalf("intake: %v", err)
	}
	if !strings.Contains(out, "16 Channel NVR") || !strings.Contains(out, "Installation Basic") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestIntakeCommand_BlankText(t *testing.T) {
	useMockBackend(t)

	_, err := execute(t, "intake", "   ")
	if !errors.Is(err, intake.ErrBlankText) {
		t.Fatalf("expected ErrBlankText, got %v", err)
	}
}

func TestInventoryCommands(t *testing.T) {
	dir := useMockBackend(t)

	out, err := execute(t, "inventory", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Cat6 Cable") {
		t.Fatalf("expected starter catalog:\n%s", out)
	}

	_, err = execute(t, "inventory", "add", "--name", "Rack 6U")
	if !errors.Is(err, inventory.ErrInvalidDraft) {
		t.Fatalf("expected ErrInvalidDraft, got %v", err)
	}

	out, err = execute(t, "inventory", "add", "--name", "Rack 6U", "--price", "2400", "--category", "accessory")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added Rack 6U") {
		t.Fatalf("unexpected output %q", out)
	}

	file := filepath.Join(dir, "items.json")
	data := `[{"name":"Smart PoE Switch","category":"accessory","price":6500},{"name":"Site Survey","category":"installation","price":1000,"unit":"job"}]`
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "inventory", "import", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "2 of 2 imported") {
		t.Fatalf("unexpected output %q", out)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
