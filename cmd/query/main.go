package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Ayash-Bera/medquery/internal/config"
	"github.com/Ayash-Bera/medquery/internal/container"
	"github.com/Ayash-Bera/medquery/internal/medical"
	"github.com/Ayash-Bera/medquery/internal/view"
	"github.com/Ayash-Bera/medquery/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	rawJSON = flag.Bool("json", false, "Print the raw JSON response instead of rendering it")
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-json] [-verbose] [query text...]\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "With no arguments the query is read from stdin.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := godotenv.Load(); err != nil && *verbose {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	query, err := readQuery(flag.Args(), os.Stdin)
	if err != nil {
		logger.WithError(err).Fatal("Failed to read query")
	}

	svc, _, err := medical.NewServiceFromConfig(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize medical client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	qc := container.New(svc, logger, container.Options{SessionID: "cli", LatestOnly: true})
	state := qc.SubmitQuery(ctx, container.QueryData{Query: query})

	os.Exit(report(state, *rawJSON, os.Stdout, os.Stderr))
}

// readQuery joins the arguments, or reads all of in when there are none.
func readQuery(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// report prints the outcome and returns the exit code.
func report(state container.UIState, raw bool, stdout, stderr io.Writer) int {
	if state.Error != "" {
		fmt.Fprintln(stderr, state.Error)
		return 1
	}

	if raw {
		fmt.Fprintln(stdout, string(state.Response))
		return 0
	}
	if !state.HasResponse() {
		return 0
	}

	if err := view.RenderText(stdout, view.NarrowResponse(state.Response)); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
