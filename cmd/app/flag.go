package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pwnholic/taskcard/internal"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
	FormatBoth Format = "both"
)

// Record is one form submission: phone, job type and raw price.
type Record struct {
	Phone string
	Job   string
	Price string
}

type Flag struct {
	Record        Record
	Records       []Record
	Format        Format
	OutputDir     string
	MaxConcurrent int
	Verbose       bool
}

func parseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPNG, FormatPDF, FormatBoth:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want png, pdf or both)", s)
}

// parseRecord reads a "phone,job,price" line. The job column may be empty.
func parseRecord(line string) (Record, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("want phone,job,price, got %q", line)
	}
	return Record{
		Phone: strings.TrimSpace(parts[0]),
		Job:   strings.TrimSpace(parts[1]),
		Price: strings.TrimSpace(parts[2]),
	}, nil
}

func readBatchFile(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading batch file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("batch file is empty or contains no records")
	}
	return records, nil
}

func parseFlag(defaultOutput string) *Flag {
	help := flag.Bool("h", false, "Display this help message and exit")
	flag.BoolVar(help, "help", false, "Alias for -h")
	phone := flag.String("p", "", `Phone number (e.g. "08123456789"), also used in the file names`)
	job := flag.String("j", "SINGLE", `Job type: SINGLE, TRIPLE, QUAD or PENTA`)
	price := flag.String("r", "", `Product price in rupiah (e.g. "50000")`)
	format := flag.String("f", string(FormatBoth), `Output format: png, pdf or both`)
	output := flag.String("o", defaultOutput, `Output directory`)
	batchFile := flag.String("b", "", `Path to file containing records, one "phone,job,price" per line`)
	maxConcurrent := flag.Int("x", 4, `Maximum records rendered at the same time`)
	verbose := flag.Bool("v", false, `Enable debug logging`)

	flag.Parse()

	if *help {
		fmt.Println("Task Card - Render GUCCI desktop task cards to PNG and PDF")
		fmt.Println("Usage: `taskcard -p <phone> -j <job> -r <price>` or `taskcard -b <file>`")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Single card, both formats: -p 08123456789 -j TRIPLE -r 50000")
		fmt.Println("  Image only: -p 08123456789 -r 50000 -f png")
		fmt.Println("  Batch file into ./out: -b records.txt -o out -x 8")
		os.Exit(0)
	}

	if *phone == "" && *batchFile == "" {
		fmt.Println("Either a phone number or a batch file is required. Use -p or -b flag")
		os.Exit(1)
	}

	if *phone != "" && *batchFile != "" {
		internal.Error("Cannot use both -p and -b at the same time")
		os.Exit(1)
	}

	f, err := parseFormat(*format)
	if err != nil {
		internal.Error("%v", err)
		os.Exit(1)
	}

	if *maxConcurrent < 1 {
		internal.Error("Concurrency value (-x) must be >= 1")
		os.Exit(1)
	}

	var records []Record
	if *batchFile != "" {
		records, err = readBatchFile(*batchFile)
		if err != nil {
			internal.Error("%v", err)
			os.Exit(1)
		}
	}

	return &Flag{
		Record:        Record{Phone: *phone, Job: *job, Price: *price},
		Records:       records,
		Format:        f,
		OutputDir:     *output,
		MaxConcurrent: *maxConcurrent,
		Verbose:       *verbose,
	}
}
