package completion

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newTestRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "waexif", Run: func(cmd *cobra.Command, args []string) {}}
	root.Flags().BoolP("recursive", "r", false, "walk subdirectories")
	return root
}

func TestDetectShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	tests := []struct {
		shellEnv string
		want     Shell
		wantErr  bool
	}{
		{"/bin/bash", Bash, false},
		{"/usr/bin/zsh", Zsh, false},
		{"/usr/local/bin/fish", Fish, false},
		{"/bin/tcsh", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.shellEnv, func(t *testing.T) {
			t.Setenv("SHELL", tt.shellEnv)

			got, err := DetectShell()
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectShell() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DetectShell() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetInstallPath(t *testing.T) {
	home := "/home/user"
	tests := []struct {
		shell Shell
		want  string
	}{
		{Bash, filepath.Join(home, ".bash_completion.d", "waexif")},
		{Zsh, filepath.Join(home, ".zsh", "completion", "_waexif")},
		{Fish, filepath.Join(home, ".config", "fish", "completions", "waexif.fish")},
	}

	for _, tt := range tests {
		got, err := GetInstallPath(tt.shell, home, "waexif")
		if err != nil {
			t.Fatalf("GetInstallPath(%s) error = %v", tt.shell, err)
		}
		if got != tt.want {
			t.Errorf("GetInstallPath(%s) = %s, want %s", tt.shell, got, tt.want)
		}
	}

	if _, err := GetInstallPath("tcsh", home, "waexif"); err == nil {
		t.Error("GetInstallPath() should fail for an unsupported shell")
	}
}

func TestRunInstall_InvalidShell(t *testing.T) {
	err := runInstall(&bytes.Buffer{}, newTestRootCmd(), "invalidshell", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "unsupported shell") {
		t.Errorf("runInstall() error = %v, want error containing 'unsupported shell'", err)
	}
}

func TestRunInstall_WritesScripts(t *testing.T) {
	tests := []struct {
		shell Shell
		path  []string
	}{
		{Bash, []string{".bash_completion.d", "waexif"}},
		{Zsh, []string{".zsh", "completion", "_waexif"}},
		{Fish, []string{".config", "fish", "completions", "waexif.fish"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.shell), func(t *testing.T) {
			home := t.TempDir()
			var out bytes.Buffer
			if err := runInstall(&out, newTestRootCmd(), string(tt.shell), home); err != nil {
				t.Fatalf("runInstall(%s) error = %v", tt.shell, err)
			}

			content, err := os.ReadFile(filepath.Join(append([]string{home}, tt.path...)...))
			if err != nil {
				t.Fatalf("Completion script not written: %v", err)
			}
			if !strings.Contains(string(content), "waexif") {
				t.Error("Completion script does not mention the program name")
			}
			if !strings.Contains(out.String(), "installed successfully") {
				t.Errorf("Unexpected output %q", out.String())
			}
		})
	}
}

func TestRunInstall_BashEnablesAutoLoadOnce(t *testing.T) {
	home := t.TempDir()
	root := newTestRootCmd()

	for range 2 {
		if err := runInstall(&bytes.Buffer{}, root, "bash", home); err != nil {
			t.Fatalf("runInstall(bash) error = %v", err)
		}
	}

	content, err := os.ReadFile(filepath.Join(home, ".bash_completion"))
	if err != nil {
		t.Fatalf("Failed to read .bash_completion: %v", err)
	}
	installPath := filepath.Join(home, ".bash_completion.d", "waexif")
	if strings.Count(string(content), "source "+installPath) != 1 {
		t.Errorf("Expected a single source line, got:\n%s", content)
	}
}

func TestEnableBashAutoLoad_ExistingContent(t *testing.T) {
	tmpDir := t.TempDir()
	bashCompletionFile := filepath.Join(tmpDir, ".bash_completion")
	if err := os.WriteFile(bashCompletionFile, []byte("source /etc/other"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := enableBashAutoLoad(bashCompletionFile, "/x/waexif"); err != nil {
		t.Fatalf("enableBashAutoLoad() error = %v", err)
	}

	content, _ := os.ReadFile(bashCompletionFile)
	if string(content) != "source /etc/other\nsource /x/waexif\n" {
		t.Errorf("Unexpected content %q", content)
	}
}

func TestRunUninstall(t *testing.T) {
	home := t.TempDir()
	root := newTestRootCmd()

	if err := runUninstall(&bytes.Buffer{}, "waexif", "fish", home); err == nil || !strings.Contains(err.Error(), "completion not installed") {
		t.Errorf("runUninstall() error = %v, want 'completion not installed'", err)
	}

	if err := runInstall(&bytes.Buffer{}, root, "bash", home); err != nil {
		t.Fatalf("runInstall(bash) error = %v", err)
	}
	var out bytes.Buffer
	if err := runUninstall(&out, "waexif", "bash", home); err != nil {
		t.Fatalf("runUninstall(bash) error = %v", err)
	}

	installPath := filepath.Join(home, ".bash_completion.d", "waexif")
	if _, err := os.Stat(installPath); !os.IsNotExist(err) {
		t.Error("Completion script still exists after uninstall")
	}
	content, _ := os.ReadFile(filepath.Join(home, ".bash_completion"))
	if strings.Contains(string(content), installPath) {
		t.Errorf("Source line not removed:\n%s", content)
	}
	if !strings.Contains(out.String(), "uninstalled successfully") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestDisableBashAutoLoad_MissingFile(t *testing.T) {
	if err := disableBashAutoLoad(filepath.Join(t.TempDir(), ".bash_completion"), "/x/waexif"); err != nil {
		t.Errorf("disableBashAutoLoad() error = %v, want nil", err)
	}
}

func TestCommands(t *testing.T) {
	root := newTestRootCmd()
	install := NewInstallCmd(root)
	uninstall := NewUninstallCmd(root)

	if install.Use != "install-autocomplete" || uninstall.Use != "uninstall-autocomplete" {
		t.Errorf("Unexpected command names %q, %q", install.Use, uninstall.Use)
	}
	if !strings.Contains(install.Short, "waexif") || !strings.Contains(uninstall.Short, "waexif") {
		t.Error("Expected descriptions to mention the program name")
	}
	if install.Flags().Lookup("shell") == nil || uninstall.Flags().Lookup("shell") == nil {
		t.Error("Expected --shell flag on both commands")
	}
}
