// Command predict classifies a single message with a trained bundle and
// prints the predicted intent. Unknown algorithm names are rejected before
// any file is touched.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hazemdh/leadbot-go/internal/bundle"
	"github.com/hazemdh/leadbot-go/internal/config"
)

// CLI flags
var (
	algorithmFlag = flag.String("algorithm", config.AlgorithmLogisticRegression, "Trained algorithm to load")
	dataDirFlag   = flag.String("data-dir", "", "Data directory (defaults to DATA_DIR or ./data)")
)

func main() {
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <message>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	message := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if message == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := bundle.ValidateAlgorithm(*algorithmFlag); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataDirFlag != "" {
		cfg.DataDir = *dataDirFlag
	}

	b, err := bundle.Load(cfg.ModelDir(), *algorithmFlag)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load bundle: %v\n", err)
		os.Exit(1)
	}

	intent, err := b.Classify(message)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(intent)
}
