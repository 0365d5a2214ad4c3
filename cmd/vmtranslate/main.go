// Command vmtranslate lowers VM bytecode (a single .vm file, or every .vm
// file in a directory) to Hack assembly.
package main

import (
	"os"

	"github.com/teris-io/cli"

	"github.com/libklein/n2tchain/internal/logx"
	"github.com/libklein/n2tchain/internal/toolio"
	"github.com/libklein/n2tchain/internal/vmtrans"
)

const vmExt = ".vm"

var app = cli.New("Translates VM bytecode to Hack assembly.").
	WithArg(cli.NewArg("path", "a .vm file, or a directory of .vm files").WithType(cli.TypeString)).
	WithAction(run)

func run(args []string, options map[string]string) int {
	log := logx.New(os.Stderr)
	if len(args) != 1 {
		log.Errorf("usage: vmtranslate <path>")
		return log.ExitCode()
	}
	path := args[0]

	files, err := toolio.Discover(path, vmExt)
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}
	if len(files) == 0 {
		log.Errorf("no %s files found under %q", vmExt, path)
		return log.ExitCode()
	}

	outPath := toolio.StemOutputPath(path, ".asm")
	multiFile := toolio.IsDir(path)
	if multiFile {
		outPath = toolio.DirOutputPath(path, ".asm")
	}

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.ErrorIf(err)
		return log.ExitCode()
	}
	defer out.Close()

	cw := vmtrans.NewCodeWriter(out)
	if multiFile {
		cw.WriteBootstrap()
	}

	for _, file := range files {
		if err := translateFile(file, cw); err != nil {
			log.Errorf("%s: %v", file, err)
			return log.ExitCode()
		}
	}
	cw.WriteClose()
	if err := cw.Flush(); err != nil {
		log.ErrorIf(err)
	}
	if log.ExitCode() == 0 {
		log.Leveledf("INFO")("translated %s -> %s", path, outPath)
	}
	return log.ExitCode()
}

func translateFile(path string, cw *vmtrans.CodeWriter) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	cw.SetFileName(stemBase(path))
	parser := vmtrans.NewParser(in)
	for parser.Scan() {
		if err := cw.Write(parser.Instruction()); err != nil {
			return err
		}
	}
	return parser.Err()
}

func stemBase(path string) string {
	base := toolio.StemOutputPath(path, "")
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			return base[i+1:]
		}
	}
	return base
}

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
