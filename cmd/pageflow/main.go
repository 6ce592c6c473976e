package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gompdf/pageflow"
	"github.com/gompdf/pageflow/internal/config"
	"github.com/gompdf/pageflow/internal/logging"
	"github.com/gompdf/pageflow/internal/store"
)

func main() {
	var (
		inputFile  string
		configFile string
		outputFile string
		asJSON     bool
		verbose    bool
		serveAddr  string
		storeDir   string
	)

	flag.StringVar(&inputFile, "input", "", "Input HTML or JSON document (path or URL)")
	flag.StringVar(&configFile, "config", "", "Configuration file (default ~/.pageflow/config.json)")
	flag.StringVar(&outputFile, "output", "", "Write the split document as HTML to this path")
	flag.BoolVar(&asJSON, "json", false, "Print the layout result as JSON")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&serveAddr, "serve", "", "Run the document storage service on this address")
	flag.StringVar(&storeDir, "store", "", "Directory of the document store")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if errors.Is(err, config.ErrNotConfigured) {
		cfg = config.Default()
	} else if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		logging.SetDebug(true)
	}

	if serveAddr != "" {
		if storeDir == "" {
			storeDir = cfg.StoreDir
		}
		if err := serve(serveAddr, storeDir); err != nil {
			fmt.Printf("Error running store: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if inputFile == "" {
		fmt.Println("Error: input file is required")
		flag.Usage()
		os.Exit(1)
	}
	if err := paginate(cfg, inputFile, outputFile, asJSON, verbose); err != nil {
		fmt.Printf("Error paginating %s: %v\n", inputFile, err)
		os.Exit(1)
	}
}

func paginate(cfg config.Config, input, output string, asJSON, verbose bool) error {
	opts := []pageflow.Option{pageflow.WithConfig(cfg), pageflow.WithDebug(verbose)}
	if cfg.Stylesheet != "" {
		css, err := os.ReadFile(cfg.Stylesheet)
		if err != nil {
			return fmt.Errorf("read stylesheet: %w", err)
		}
		opts = append(opts, pageflow.WithStylesheet(string(css)))
	}
	if abs, err := filepath.Abs(input); err == nil {
		opts = append(opts, pageflow.WithResourcePath(filepath.Dir(abs)))
	}

	ctx := context.Background()
	s, err := pageflow.Open(ctx, input, opts...)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Flush(ctx); err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s.Layout()); err != nil {
			return err
		}
	} else {
		fmt.Print(renderReport(filepath.Base(input), s.Pages()))
	}

	if output != "" {
		out, err := s.HTML()
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
			return err
		}
		if verbose {
			fmt.Printf("Wrote %s\n", output)
		}
	}
	return nil
}

func serve(addr, dir string) error {
	st, err := store.NewFileStore(dir)
	if err != nil {
		return err
	}
	logger := logging.New("store")
	logger.Info("serving documents", "addr", addr, "dir", dir)
	return http.ListenAndServe(addr, store.NewHandler(st, logger))
}
