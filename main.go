package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"

	"fortio.org/safecast"
	"github.com/alecthomas/repr"
	"github.com/pontaoski/minic/errors"
	"github.com/pontaoski/minic/eval"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"golang.org/x/term"
)

func useColor(c *cli.Context) bool {
	switch c.String("color") {
	case "always":
		return true
	case "never":
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// report prints lowering diagnostics; other errors are passed through.
func report(c *cli.Context, err error) error {
	if len(errors.All(err)) == 0 {
		return err
	}

	if c.String("format") == "json" {
		if werr := errors.WriteJSON(os.Stdout, err); werr != nil {
			return werr
		}
	} else {
		errors.Print(os.Stderr, err, useColor(c))
	}
	return cli.Exit("", 1)
}

func buildFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "import",
			Usage: "read extern signatures from a .msig interface or a compiled library",
			Value: cli.NewStringSlice(),
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "stop at the first declaration that fails to lower",
		},
	}
}

func sourcesFor(c *cli.Context) ([]string, error) {
	if c.Args().Present() {
		return c.Args().Slice(), nil
	}
	return sourceFiles(".")
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("minic: ")

	app := &cli.App{
		Name:  "minic",
		Usage: "minic compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "color",
				Value: "auto",
				Usage: "colorize diagnostics (auto|always|never)",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "diagnostic format (text|json)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log what the compiler is doing",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("verbose") {
				log.SetOutput(ioutil.Discard)
			}
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			if exit, ok := err.(cli.ExitCoder); ok {
				if msg := exit.Error(); msg != "" {
					fmt.Fprintln(os.Stderr, msg)
				}
				os.Exit(exit.ExitCode())
			}
			tracerr.PrintSourceColor(err)
			os.Exit(1)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "init a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "version",
						Value: "0.1.0",
					},
				},
				Action: func(c *cli.Context) error {
					name := c.Args().First()
					if name == "" {
						return cli.Exit("no module name provided", 1)
					}
					return writeManifest(".", minicModule{
						Package: name,
						Version: c.String("version"),
					})
				},
			},
			{
				Name:  "typeinfo",
				Usage: "dump typeinfo from a compiled library",
				Action: func(c *cli.Context) error {
					file := c.Args().Get(0)
					data, err := getTypeInfoFromFile(file)
					if err != nil {
						return err
					}
					repr.Println(data)
					return nil
				},
			},
			{
				Name:  "parse",
				Usage: "dump the syntax tree of source files",
				Action: func(c *cli.Context) error {
					files, err := sourcesFor(c)
					if err != nil {
						return err
					}
					prog, err := parseFiles(files)
					if err != nil {
						return err
					}
					repr.Println(prog)
					return nil
				},
			},
			{
				Name:  "check",
				Usage: "lower each source file on its own and report diagnostics",
				Flags: buildFlags()[:1],
				Action: func(c *cli.Context) error {
					files, err := sourcesFor(c)
					if err != nil {
						return err
					}
					imports, err := loadImports(c.StringSlice("import"))
					if err != nil {
						return err
					}
					log.Printf("checking %d files", len(files))
					diags, err := checkFiles(c.Context, files, imports)
					if err != nil {
						return err
					}
					return report(c, diags.Err())
				},
			},
			{
				Name:  "run",
				Usage: "lower the module and execute its main function",
				Flags: buildFlags(),
				Action: func(c *cli.Context) error {
					doc, err := readManifest(".")
					if err != nil {
						return err
					}
					files, err := sourcesFor(c)
					if err != nil {
						return err
					}

					result, err := compile(doc, buildOptions{
						files:    files,
						imports:  c.StringSlice("import"),
						failFast: c.Bool("fail-fast"),
					})
					if err != nil {
						return report(c, err)
					}

					ret, err := eval.New(result.Module).Call("main")
					if err != nil {
						return err
					}
					fmt.Println(ret)

					if ret.IsFloat {
						return nil
					}
					status, err := safecast.Conv[uint8](ret.Int)
					if err != nil {
						return cli.Exit(fmt.Sprintf("exit status %d out of range", ret.Int), 1)
					}
					if status != 0 {
						return cli.Exit("", int(status))
					}
					return nil
				},
			},
			{
				Name:  "build",
				Usage: "build the module in the current directory",
				Flags: append(buildFlags(),
					&cli.StringFlag{
						Name: "output",
					},
					&cli.BoolFlag{
						Name:  "dump",
						Value: false,
					},
					&cli.BoolFlag{
						Name:  "library",
						Value: false,
					},
					&cli.StringSliceFlag{
						Name:  "force-import",
						Value: cli.NewStringSlice(),
					},
					&cli.StringFlag{
						Name:  "emit-interface",
						Usage: "write the exported signatures to a .msig file",
					},
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "rebuild whenever a source file changes",
					},
				),
				Action: func(c *cli.Context) error {
					rebuild := func() error {
						doc, err := readManifest(".")
						if err != nil {
							return err
						}
						library := c.Bool("library") || doc.Library

						out := c.String("output")
						if out == "" {
							out = doc.Package
						}
						if library {
							out += ".so"
						}

						files, err := sourceFiles(".")
						if err != nil {
							return err
						}
						log.Printf("lowering %d files of %s", len(files), doc.Package)

						result, err := compile(doc, buildOptions{
							files:    files,
							imports:  c.StringSlice("import"),
							library:  library,
							failFast: c.Bool("fail-fast"),
						})
						if err != nil {
							return report(c, err)
						}

						if path := c.String("emit-interface"); path != "" {
							if err := writeInterface(path, result.TypeInfo); err != nil {
								return err
							}
						}

						module := result.Module.String()
						if c.Bool("dump") {
							fmt.Println(module)
							return nil
						}

						log.Printf("linking %s", out)
						return link(module, out, library, c.StringSlice("force-import"))
					}

					if c.Bool("watch") {
						return watch(".", rebuild)
					}
					return rebuild()
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
