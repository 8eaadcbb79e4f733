// Command gen-completions writes the shell completion scripts for quill
// (bash, zsh, fish, powershell) into an output directory so release archives
// can ship them.
//
// Usage:
//
//	go run ./scripts/gen-completions [output-dir]
//
// The default output directory is "completions".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AbdelazizMoustafa10m/quill/internal/cli"
)

func main() {
	outDir := "completions"
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	if err := run(outDir); err != nil {
		fmt.Fprintln(os.Stderr, "gen-completions:", err)
		os.Exit(1)
	}
	fmt.Printf("All completions written to %s/\n", outDir)
}

func run(outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", outDir, err)
	}

	root := cli.NewRootCmd()
	scripts := []struct {
		name string
		gen  func(w io.Writer) error
	}{
		{name: "quill.bash", gen: func(w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
		{name: "_quill", gen: root.GenZshCompletion},
		{name: "quill.fish", gen: func(w io.Writer) error { return root.GenFishCompletion(w, true) }},
		{name: "quill.ps1", gen: root.GenPowerShellCompletionWithDesc},
	}

	for _, s := range scripts {
		path := filepath.Join(outDir, s.name)
		if err := writeFile(path, s.gen); err != nil {
			return err
		}
		fmt.Printf("Generated %s\n", path)
	}
	return nil
}

func writeFile(path string, gen func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %q: %w", path, err)
	}
	if err := gen(f); err != nil {
		f.Close()
		return fmt.Errorf("generating %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %q: %w", path, err)
	}
	return nil
}
