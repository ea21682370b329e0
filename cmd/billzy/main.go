// Command billzy reads OCR text of receipts from files (or stdin) and prints
// the parsed line items, totals, merchant and warnings.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/billzy/internal/calculator"
	"github.com/mmynk/billzy/internal/receipt"
	"github.com/mmynk/billzy/pkg/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// report is the printable result for one receipt.
type report struct {
	Source   string               `json:"source" yaml:"source"`
	Merchant string               `json:"merchant,omitempty" yaml:"merchant,omitempty"`
	Items    []receipt.ParsedItem `json:"items" yaml:"items"`
	ItemSum  float64              `json:"item_sum" yaml:"item_sum"`
	Totals   receipt.Totals       `json:"totals" yaml:"totals"`
	Warnings []string             `json:"warnings" yaml:"warnings"`
	Trace    []receipt.LineTrace  `json:"trace,omitempty" yaml:"trace,omitempty"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := ff.NewFlagSet("billzy")
	var (
		format      = fs.StringLong("format", "text", "Output format: text, json, yaml")
		logLevel    = fs.StringLong("log-level", "warn", "Log level: debug, info, warn, error")
		trace       = fs.BoolLong("trace", "Include the per-line classification trace")
		concurrency = fs.IntLong("concurrency", 4, "Receipts parsed in parallel")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("BILLZY")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logging.New(stderr, level))

	switch *format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q", *format)
	}

	sources, texts, err := readInputs(fs.GetArgs(), stdin)
	if err != nil {
		return err
	}

	parsed, err := receipt.ParseAll(ctx, texts, *concurrency)
	if err != nil {
		return err
	}

	reports := make([]report, len(parsed))
	for i, p := range parsed {
		reports[i] = report{
			Source:   sources[i],
			Items:    p.Result.Items,
			ItemSum:  p.Result.ItemSum(),
			Totals:   p.Result.Totals,
			Warnings: p.Result.Warnings,
		}
		if p.HasName {
			reports[i].Merchant = p.Merchant
		}
		if *trace {
			reports[i].Trace = p.Result.Trace
		}
		slog.Debug("Receipt parsed", "source", sources[i], "items", len(p.Result.Items), "warnings", len(p.Result.Warnings))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return writeText(stdout, reports)
	}
}

// readInputs reads every named file, or stdin when there are none. The name
// "-" also means stdin.
func readInputs(paths []string, stdin io.Reader) (sources, texts []string, err error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, p := range paths {
		var b []byte
		if p == "-" {
			b, err = io.ReadAll(stdin)
		} else {
			b, err = os.ReadFile(p)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		sources = append(sources, p)
		texts = append(texts, string(b))
	}
	return sources, texts, nil
}

func writeText(w io.Writer, reports []report) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := r.Source
		if r.Merchant != "" {
			title = fmt.Sprintf("%s (%s)", r.Merchant, r.Source)
		}
		fmt.Fprintf(w, "== %s ==\n", title)

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
		for _, it := range r.Items {
			mark := ""
			if it.Uncertain {
				mark = "?"
			}
			fmt.Fprintf(tw, "%dx\t%s\t%s\t%s\t\n", it.Quantity, it.Name, calculator.FormatMoney(it.Price), mark)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(w, "Items: %s", calculator.FormatMoney(r.ItemSum))
		if r.Totals.Total != nil {
			fmt.Fprintf(w, "  Total: %s", calculator.FormatMoney(*r.Totals.Total))
		}
		if r.Totals.Tax != nil {
			fmt.Fprintf(w, "  Tax: %s", calculator.FormatMoney(*r.Totals.Tax))
		}
		fmt.Fprintln(w)

		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "! %s\n", warn)
		}
		for _, tr := range r.Trace {
			fmt.Fprintf(w, "  %3d %-9s %-14s %s\n", tr.Line, tr.Class, tr.Outcome, strings.TrimSpace(tr.Text))
		}
	}
	return nil
}
