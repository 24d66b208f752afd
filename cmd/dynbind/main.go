package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/veldtlabs/dynbind/gen"
	"github.com/veldtlabs/dynbind/guest"
	"github.com/veldtlabs/dynbind/meta"
)

type config struct {
	Dir     string `toml:"dir"`
	Out     string `toml:"out"`
	Package string `toml:"package"`
}

func main() {
	var (
		dir         = flag.String("dir", "", "Directory with annotated Go sources")
		out         = flag.String("out", "", "Output file (default <dir>/dynbind_gen.go)")
		pkg         = flag.String("pkg", "", "Package name for the generated file (default: source package)")
		configFile  = flag.String("config", "", "TOML config file")
		list        = flag.Bool("list", false, "List extracted modules and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		meta.SetLogger(l)
		gen.SetLogger(l)
		guest.SetLogger(l)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// flags override the config file
	if *dir != "" {
		cfg.Dir = *dir
	}
	if *out != "" {
		cfg.Out = *out
	}
	if *pkg != "" {
		cfg.Package = *pkg
	}

	if cfg.Dir == "" {
		fmt.Fprintln(os.Stderr, "Usage: dynbind -dir <sources> [-out file] [-pkg name]")
		fmt.Fprintln(os.Stderr, "       dynbind -dir <sources> -list")
		fmt.Fprintln(os.Stderr, "       dynbind -dir <sources> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       dynbind -config dynbind.toml")
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(cfg.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func run(cfg config, listOnly bool) error {
	result, err := meta.ExtractDir(cfg.Dir)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	fmt.Printf("Source: %s (package %s)\n", cfg.Dir, result.Package)
	fmt.Printf("Modules: %d\n", len(result.Modules))
	for _, m := range result.Modules {
		fmt.Printf("\nmodule %s\n", m.Name)
		for _, fn := range m.Functions {
			fmt.Printf("  %s\n", signature(fn))
		}
		for _, cls := range m.Classes {
			fmt.Printf("  class %s\n", cls.Name)
			if cls.Constructor != nil {
				fmt.Printf("    %s\n", signature(cls.Constructor))
			}
			for _, fn := range cls.Methods {
				fmt.Printf("    %s\n", signature(fn))
			}
		}
	}

	if listOnly {
		return nil
	}

	pkgName := cfg.Package
	if pkgName == "" {
		pkgName = result.Package
	}
	src, err := gen.File(result, gen.Options{Package: pkgName})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	outFile := cfg.Out
	if outFile == "" {
		outFile = filepath.Join(cfg.Dir, "dynbind_gen.go")
	}
	if err := os.WriteFile(outFile, src, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("\nWrote %s (%d bytes)\n", outFile, len(src))
	return nil
}

// signature renders the guest-facing signature of one bound function,
// e.g. "add_one(x: int) -> int".
func signature(fn *meta.FunctionSpec) string {
	var params []string
	for _, p := range fn.Params {
		item := p.Name + ": " + string(p.Guest)
		if p.Optional {
			item += "?"
		}
		params = append(params, item)
	}
	s := fn.Name + "(" + strings.Join(params, ", ") + ")"
	if fn.Return.Guest != meta.GuestNone {
		s += " -> " + string(fn.Return.Guest)
	}
	if fn.Kind != meta.KindFunction && fn.Kind != meta.KindMethod {
		s += "  [" + string(fn.Kind) + "]"
	}
	return s
}
