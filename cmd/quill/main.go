// Command quill composes conventional commit messages interactively and
// hands them to git commit.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/quill/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
