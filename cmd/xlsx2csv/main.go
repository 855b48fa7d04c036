// Command xlsx2csv streams one worksheet of an .xlsx file to CSV.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/yamitzky/xlstream-go/xlstream"
)

type options struct {
	sheet     string
	headers   bool
	headerRow int
	delimiter string
	output    string
	encoding  string
	list      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "xlsx2csv [input.xlsx]",
		Short: "Stream a worksheet to CSV",
		Long: `xlsx2csv converts one worksheet of an .xlsx file to CSV. Rows are
streamed straight from the container, so arbitrarily large sheets convert
in constant memory.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.sheet, "sheet", "s", "", "sheet name or zero-based index (default: first visible sheet)")
	f.BoolVar(&opts.headers, "headers", false, "emit the header row first and skip it in the data")
	f.IntVar(&opts.headerRow, "header-row", 1, "1-based header row number")
	f.StringVarP(&opts.delimiter, "delimiter", "d", ",", "field delimiter")
	f.StringVarP(&opts.output, "output", "o", "", "output file path (default: stdout)")
	f.StringVarP(&opts.encoding, "encoding", "c", "", "output encoding as an IANA name (default: UTF-8)")
	f.BoolVar(&opts.list, "list", false, "list sheet names and visibility, then exit")
	return cmd
}

func run(cmd *cobra.Command, opts *options, input string) error {
	book, err := xlstream.Open(input)
	if err != nil {
		return err
	}
	defer book.Close()

	if opts.list {
		for _, s := range book.Sheets() {
			state := s.State
			if state == "" {
				state = "visible"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", s.Name, state)
		}
		return nil
	}

	sheet, err := selectSheet(book, opts.sheet)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if opts.encoding != "" {
		enc, err := htmlindex.Get(opts.encoding)
		if err != nil {
			return fmt.Errorf("unknown encoding %q", opts.encoding)
		}
		w := transform.NewWriter(out, enc.NewEncoder())
		defer w.Close()
		out = w
	}

	w := csv.NewWriter(out)
	if opts.delimiter != "" {
		w.Comma = []rune(opts.delimiter)[0]
	}

	if opts.headers {
		headers, err := sheet.ExtractHeaders(opts.headerRow)
		if err != nil {
			return err
		}
		if err := w.Write(formatRecord(headers)); err != nil {
			return err
		}
	}

	it := sheet.RowsWithMetaData(false, opts.headerRow)
	defer it.Close()
	for it.Next() {
		row := it.Row()
		if opts.headers && row.Number == opts.headerRow {
			continue
		}
		if err := w.Write(formatRecord(row.Cells)); err != nil {
			return err
		}
	}
	if err := it.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// selectSheet resolves the --sheet flag. An empty value picks the first
// visible sheet, a number is a zero-based index, anything else a name.
func selectSheet(book *xlstream.Book, spec string) (*xlstream.Sheet, error) {
	if spec == "" {
		for _, s := range book.Sheets() {
			if s.State == "" {
				return s, nil
			}
		}
		return book.SheetByIndex(0)
	}
	if idx, err := strconv.Atoi(spec); err == nil {
		return book.SheetByIndex(idx)
	}
	return book.SheetByName(spec)
}

func formatRecord(cells []interface{}) []string {
	record := make([]string, len(cells))
	for i, v := range cells {
		record[i] = formatValue(v)
	}
	return record
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
