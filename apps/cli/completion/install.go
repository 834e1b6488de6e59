package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install-autocomplete command for rootCmd
func NewInstallCmd(rootCmd *cobra.Command) *cobra.Command {
	var shellFlag string

	cmd := &cobra.Command{
		Use:   "install-autocomplete",
		Short: fmt.Sprintf("Install shell completion for %s", rootCmd.Name()),
		Long: fmt.Sprintf(`Install shell completion for the %s CLI.

Automatically detects your shell and installs the appropriate completion script.
Supports bash, zsh, fish, and powershell.`, rootCmd.Name()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			return runInstall(cmd.OutOrStdout(), rootCmd, shellFlag, home)
		},
	}

	cmd.Flags().StringVarP(&shellFlag, "shell", "s", "", "Shell to install completion for (bash, zsh, fish, powershell). Auto-detected if not specified.")

	return cmd
}

func runInstall(out io.Writer, rootCmd *cobra.Command, shellFlag, home string) error {
	shell, err := resolveShell(shellFlag)
	if err != nil {
		return err
	}

	installPath, err := GetInstallPath(shell, home, rootCmd.Name())
	if err != nil {
		return err
	}

	dir := filepath.Dir(installPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create completion directory %s: %w", dir, err)
	}

	if err := writeCompletionScript(rootCmd, shell, installPath); err != nil {
		return err
	}

	if shell == Bash {
		bashCompletionFile := filepath.Join(home, ".bash_completion")
		if err := enableBashAutoLoad(bashCompletionFile, installPath); err != nil {
			// Non-fatal: the script is installed, it just needs sourcing by hand
			fmt.Fprintf(out, "Warning: could not enable auto-load: %v\n", err)
		}
	}

	fmt.Fprintf(out, "Shell completion installed successfully for %s\n", shell)
	fmt.Fprintf(out, "Completion script location: %s\n", installPath)
	printActivationInstructions(out, shell, installPath)

	return nil
}

func writeCompletionScript(rootCmd *cobra.Command, shell Shell, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create completion file: %w", err)
	}
	defer file.Close()

	switch shell {
	case Bash:
		return rootCmd.GenBashCompletionV2(file, true)
	case Zsh:
		return rootCmd.GenZshCompletion(file)
	case Fish:
		return rootCmd.GenFishCompletion(file, true)
	case Powershell:
		return rootCmd.GenPowerShellCompletionWithDesc(file)
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
}

func printActivationInstructions(out io.Writer, shell Shell, installPath string) {
	switch shell {
	case Bash:
		fmt.Fprintln(out, "\nCompletion is now active. Open a new terminal to use it.")
	case Zsh:
		fmt.Fprintln(out, "\nTo activate completion, ensure this is in your ~/.zshrc:")
		fmt.Fprintf(out, "  fpath=(%s $fpath)\n", filepath.Dir(installPath))
		fmt.Fprintln(out, "  autoload -Uz compinit && compinit")
	case Fish:
		fmt.Fprintln(out, "\nCompletion is automatically available in new fish sessions.")
	case Powershell:
		fmt.Fprintln(out, "\nTo activate completion, add this to your PowerShell profile:")
		fmt.Fprintf(out, "  . %s\n", installPath)
	}
}

// enableBashAutoLoad adds a source line for installPath to bashCompletionFile, once.
func enableBashAutoLoad(bashCompletionFile, installPath string) error {
	content, _ := os.ReadFile(bashCompletionFile)
	for _, line := range strings.Split(string(content), "\n") {
		if strings.Contains(line, installPath) {
			return nil
		}
	}

	f, err := os.OpenFile(bashCompletionFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(f, "source %s\n", installPath)
	return err
}
