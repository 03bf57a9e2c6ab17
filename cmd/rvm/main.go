// Command rvm is the assemble/run/debug CLI: compile assembly source to a
// bytecode blob, interpret source directly, or run a previously compiled
// blob, optionally under the reference debugger.
package main

import (
	"flag"
	"fmt"
	"os"

	"rvm/bytecode"
	"rvm/config"
	"rvm/debugger"
	"rvm/encoder"
	"rvm/parser"
	"rvm/plugin"
	"rvm/vm"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("missing subcommand")
	}

	if args[0] == "-version" || args[0] == "--version" {
		fmt.Println("rvm " + Version)
		return nil
	}
	if args[0] == "-help" || args[0] == "--help" {
		printUsage()
		return nil
	}

	sub := args[0]
	switch sub {
	case "compile":
		return runCompile(args[1:])
	case "interpret":
		return runInterpret(args[1:])
	case "run":
		return runRun(args[1:])
	default:
		printUsage()
		return fmt.Errorf("unknown subcommand %q", sub)
	}
}

// commonFlags is the flag set shared by interpret and run: debugger
// attachment, plugin selection, verbosity, config override, and tracing.
type commonFlags struct {
	file    string
	debug   bool
	tui     bool
	verbose bool
	trace   bool
	config  string
	plugins pluginList
}

type pluginList []string

func (p *pluginList) String() string { return fmt.Sprint([]string(*p)) }
func (p *pluginList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func bindCommon(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVar(&f.file, "file", "", "source or bytecode file (required)")
	fs.BoolVar(&f.debug, "debug", false, "attach the debugger plugin")
	fs.BoolVar(&f.tui, "tui", true, "use the tcell/tview front end with -debug (false for a plain terminal prompt)")
	fs.BoolVar(&f.verbose, "verbose", false, "verbose output")
	fs.BoolVar(&f.trace, "trace", false, "record an execution trace and print a summary on halt")
	fs.StringVar(&f.config, "config", "", "config file path (default: "+config.GetConfigPath()+")")
	fs.Var(&f.plugins, "plugin", "load a registered plugin by name (repeatable)")
}

func runCompile(args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	var in, out string
	var plugins pluginList
	fs.StringVar(&in, "file", "", "assembly source file (required)")
	fs.StringVar(&out, "out", "", "output bytecode file (default: <file>.rvmc)")
	fs.Var(&plugins, "plugin", "plugin name to validate handler names against (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in == "" {
		return fmt.Errorf("compile: -file is required")
	}
	if out == "" {
		out = in + ".rvmc"
	}

	src, err := os.ReadFile(in) // #nosec G304 -- user-specified CLI input path
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	program, err := parser.NewParser(string(src), in).Parse()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	names := append(append([]string{}, cfg.Plugins.Load...), plugins...)
	known, err := knownHandlers(names)
	if err != nil {
		return err
	}

	compiled, err := encoder.Encode(program, known)
	if err != nil {
		return err
	}

	f, err := os.Create(out) // #nosec G304 -- user-specified CLI output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := bytecode.Write(f, compiled); err != nil {
		return err
	}
	fmt.Printf("compiled %s -> %s\n", in, out)
	return nil
}

func runInterpret(args []string) error {
	var f commonFlags
	fs := flag.NewFlagSet("interpret", flag.ExitOnError)
	bindCommon(fs, &f)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.file == "" {
		return fmt.Errorf("interpret: -file is required")
	}

	src, err := os.ReadFile(f.file) // #nosec G304 -- user-specified CLI input path
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.file, err)
	}

	program, err := parser.NewParser(string(src), f.file).Parse()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}

	names := append(append([]string{}, cfg.Plugins.Load...), f.plugins...)
	known, err := knownHandlers(names)
	if err != nil {
		return err
	}

	compiled, err := encoder.Encode(program, known)
	if err != nil {
		return err
	}

	return execute(compiled, cfg, f, names)
}

func runRun(args []string) error {
	var f commonFlags
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	bindCommon(fs, &f)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.file == "" {
		return fmt.Errorf("run: -file is required")
	}

	in, err := os.Open(f.file) // #nosec G304 -- user-specified CLI input path
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.file, err)
	}
	defer in.Close()

	compiled, err := bytecode.Read(in)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		return err
	}
	names := append(append([]string{}, cfg.Plugins.Load...), f.plugins...)

	return execute(compiled, cfg, f, names)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func execute(compiled *encoder.CompiledProgram, cfg *config.Config, f commonFlags, pluginNames []string) error {
	plugins, err := loadPlugins(pluginNames)
	if err != nil {
		return err
	}

	var dbg *debugger.Debugger
	if f.debug {
		dbg = debugger.NewDebugger()
		plugins = append(plugins, dbg)
	}

	machine := vm.NewMachineContext(compiled, plugin.NewRegistry(plugins...))

	traceOn := f.trace || cfg.Execution.EnableTrace
	if traceOn {
		machine.Trace = vm.NewExecutionTrace(0)
	}

	if f.verbose {
		fmt.Printf("start_address=0x%08x memory_end=0x%08x plugins=%v\n",
			compiled.StartAddress, compiled.MemoryEnd, pluginNames)
	}

	var tui *debugger.TUI
	runErr := make(chan error, 1)

	if f.debug && f.tui {
		tui = debugger.NewTUI(dbg)
		go func() {
			runErr <- machine.Run()
			tui.Stop()
		}()
		if err := tui.Run(); err != nil {
			return err
		}
		err = <-runErr
	} else {
		err = machine.Run()
	}

	if traceOn && machine.Trace != nil {
		fmt.Printf("executed %d instructions\n", len(machine.Trace.Steps))
	}

	return err
}

// knownHandlers resolves names against the registry's full plugin set, for
// the encoder's pre-flight handler validation.
func knownHandlers(names []string) ([]string, error) {
	plugins, err := loadPlugins(names)
	if err != nil {
		return nil, err
	}
	return plugin.NewRegistry(plugins...).HandlerNames(), nil
}

func loadPlugins(names []string) ([]plugin.Plugin, error) {
	plugins := make([]plugin.Plugin, 0, len(names))
	for _, name := range names {
		p, ok := plugin.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown plugin %q", name)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `rvm - register VM assembler, encoder, and runtime

Usage:
  rvm compile   -file <source.s> [-out <file.rvmc>]
  rvm interpret -file <source.s> [-debug] [-plugin <name>] [-trace] [-verbose] [-config <path>]
  rvm run       -file <file.rvmc> [-debug] [-plugin <name>] [-trace] [-verbose] [-config <path>]
  rvm -version
  rvm -help`)
}
