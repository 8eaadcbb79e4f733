// Command gen-manpages writes a section 1 man page for quill and each of
// its subcommands.
//
//	go run ./scripts/gen-manpages [output-dir]
//
// Pages go to man/man1 unless another directory is given.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra/doc"

	"github.com/AbdelazizMoustafa10m/quill/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/quill/internal/cli"
)

func main() {
	outDir := filepath.Join("man", "man1")
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	n, err := run(outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen-manpages:", err)
		os.Exit(1)
	}
	fmt.Printf("%d man pages written to %s/\n", n, outDir)
}

func run(outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating output dir %q: %w", outDir, err)
	}

	root := cli.NewRootCmd()
	header := &doc.GenManHeader{
		Title:   "QUILL",
		Section: "1",
		Source:  "quill " + buildinfo.GetInfo().Version,
		Manual:  "quill Manual",
	}
	if err := doc.GenManTree(root, header, outDir); err != nil {
		return 0, fmt.Errorf("generating man pages: %w", err)
	}

	pages, err := filepath.Glob(filepath.Join(outDir, "*.1"))
	if err != nil {
		return 0, err
	}
	return len(pages), nil
}
