// Command jackc compiles Jack source (a single .jack file, or every .jack
// file in a directory) to VM bytecode.
package main

import (
	"os"

	"github.com/teris-io/cli"

	"github.com/libklein/n2tchain/internal/jackcomp"
	"github.com/libklein/n2tchain/internal/logx"
	"github.com/libklein/n2tchain/internal/token"
	"github.com/libklein/n2tchain/internal/toolio"
	"github.com/libklein/n2tchain/internal/vmwriter"
)

const jackExt = ".jack"

var app = cli.New("Compiles Jack source to VM bytecode.").
	WithArg(cli.NewArg("path", "a .jack file, or a directory of .jack files").WithType(cli.TypeString)).
	WithAction(run)

func run(args []string, options map[string]string) int {
	log := logx.New(os.Stderr)
	if len(args) != 1 {
		log.Errorf("usage: jackc <path>")
		return log.ExitCode()
	}

	files, err := toolio.Discover(args[0], jackExt)
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}
	if len(files) == 0 {
		log.Errorf("no %s files found under %q", jackExt, args[0])
		return log.ExitCode()
	}

	info := log.Leveledf("INFO")
	for _, file := range files {
		if err := compileFile(file); err != nil {
			log.Errorf("%s: %v", file, err)
			continue
		}
		info("compiled %s", file)
	}
	return log.ExitCode()
}

func compileFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	outPath := toolio.StemOutputPath(path, ".vm")
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	tok := token.NewTokenizer(in)
	writer := vmwriter.New(out)
	compiler := jackcomp.New(tok, writer)
	if err := compiler.Compile(); err != nil {
		return err
	}
	return writer.Close()
}

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
