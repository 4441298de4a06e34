// Command omegasim runs a fight from a JSON request and prints the result.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"newomega/server/internal/combat"
	"newomega/server/internal/fights"
	"newomega/server/internal/net/intake"
	"newomega/server/internal/replay"
	"newomega/server/internal/stats"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitInvalid = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("omegasim", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		inPath    = flags.String("in", "-", "fight request JSON, - for stdin")
		seed      = flags.Uint64("seed", 0, "seed override (used when -seed is passed explicitly)")
		maxRounds = flags.Int("max-rounds", 0, "round cap override")
		outPath   = flags.String("out", "-", "where to write the output, - for stdout")
		summary   = flags.Bool("summary", false, "print the condensed summary instead of the full result")
		verify    = flags.Bool("verify", false, "treat the input as a recorded result and re-simulate it")
	)
	if err := flags.Parse(args); err != nil {
		return exitInvalid
	}
	seedSet := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	input, closeInput, err := openInput(*inPath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "omegasim: %v\n", err)
		return exitFailure
	}
	defer closeInput()

	if *verify {
		return runVerify(input, stdout, stderr)
	}

	req, err := intake.DecodeRequest(input, 0)
	if err != nil {
		fmt.Fprintf(stderr, "omegasim: %v\n", err)
		return exitInvalid
	}
	if seedSet {
		req.Seed = seed
	}
	if *maxRounds != 0 {
		req.MaxRounds = *maxRounds
	}

	result, err := fights.NewService(nil, fights.Config{}).Simulate(req)
	if err != nil {
		fmt.Fprintf(stderr, "omegasim: %v\n", err)
		if errors.Is(err, combat.ErrInvalidInput) {
			return exitInvalid
		}
		return exitFailure
	}

	var payload any = result
	if *summary {
		payload = stats.Summarize(result)
	}
	if err := writeOutput(*outPath, stdout, payload); err != nil {
		fmt.Fprintf(stderr, "omegasim: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func runVerify(input io.Reader, stdout, stderr io.Writer) int {
	var result combat.Result
	if err := json.NewDecoder(input).Decode(&result); err != nil {
		fmt.Fprintf(stderr, "omegasim: decode result: %v\n", err)
		return exitInvalid
	}
	checksum, err := replay.Checksum(result)
	if err != nil {
		fmt.Fprintf(stderr, "omegasim: %v\n", err)
		return exitFailure
	}
	if err := replay.Verify(result); err != nil {
		fmt.Fprintf(stderr, "omegasim: %v\n", err)
		if errors.Is(err, combat.ErrInvalidInput) {
			return exitInvalid
		}
		return exitFailure
	}
	fmt.Fprintf(stdout, "ok %s\n", checksum)
	return exitOK
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return stdin, func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}

func writeOutput(path string, stdout io.Writer, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
