// Command hackasm assembles Hack assembly (a single .asm file, or every .asm
// file in a directory, each to its own .hack file) into the 16-bit
// ASCII-binary .hack format.
package main

import (
	"os"

	"github.com/teris-io/cli"

	"github.com/libklein/n2tchain/internal/hackasm"
	"github.com/libklein/n2tchain/internal/logx"
	"github.com/libklein/n2tchain/internal/toolio"
)

const asmExt = ".asm"

var app = cli.New("Assembles Hack assembly into 16-bit binary words.").
	WithArg(cli.NewArg("path", "a .asm file, or a directory of .asm files").WithType(cli.TypeString)).
	WithAction(run)

func run(args []string, options map[string]string) int {
	log := logx.New(os.Stderr)
	if len(args) != 1 {
		log.Errorf("usage: hackasm <path>")
		return log.ExitCode()
	}
	path := args[0]

	files, err := toolio.Discover(path, asmExt)
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}
	if len(files) == 0 {
		log.Errorf("no %s files found under %q", asmExt, path)
		return log.ExitCode()
	}

	info := log.Leveledf("INFO")
	for _, file := range files {
		if err := assembleFile(file); err != nil {
			log.Errorf("%s: %v", file, err)
			continue
		}
		info("assembled %s", file)
	}
	return log.ExitCode()
}

func assembleFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	outPath := toolio.StemOutputPath(path, ".hack")
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	return hackasm.Assemble(in, out)
}

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
