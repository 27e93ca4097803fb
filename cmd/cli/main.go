package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"heartdash/adapters/excel"
	"heartdash/domain/heart"
	"heartdash/internal"
	"heartdash/internal/config"
	"heartdash/internal/container"
	"heartdash/internal/frame"
	"heartdash/internal/render"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var dataFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "heartdash-cli",
		Short:         "Query the heart disease dataset from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "Data file (defaults to DATA_FILE)")

	rootCmd.AddCommand(
		newFilterCmd(),
		newTrendCmd(),
		newRenderCmd(),
		newExportCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load builds a container over the configured or --data file
func load() (*container.Container, error) {
	_ = godotenv.Load()
	if dataFile != "" {
		os.Setenv("DATA_FILE", dataFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger.Configure(cfg.LogLevel, cfg.Debug)
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	f, source, err := c.LoadData()
	if err != nil {
		return nil, err
	}
	if err := c.InitData(f, source); err != nil {
		return nil, err
	}
	return c, nil
}

// selectionFlags binds the dashboard selectors to flags
type selectionFlags struct {
	year      int
	region    string
	income    string
	gender    string
	metric    string
	top       int
	countries []string
}

func (s *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.year, "year", heart.DefaultYear, "Year (0 for every year)")
	cmd.Flags().StringVar(&s.region, "region", heart.AllValue, "Region")
	cmd.Flags().StringVar(&s.income, "income", heart.AllValue, "World Bank income level")
	cmd.Flags().StringVar(&s.gender, "gender", heart.AllValue, "Gender: all, F or M")
	cmd.Flags().StringVar(&s.metric, "metric", heart.MetricDeathRate, "Metric")
	cmd.Flags().IntVar(&s.top, "top", heart.DefaultTopN, "Number of rows for ranked output (10 to 100 in steps of 10)")
	cmd.Flags().StringArrayVar(&s.countries, "country", nil, "Restrict to countries (repeatable)")
}

func (s *selectionFlags) selection() (heart.Selection, error) {
	sel := heart.Selection{
		Region:    s.region,
		Income:    s.income,
		Gender:    s.gender,
		Metric:    s.metric,
		TopN:      s.top,
		Countries: s.countries,
	}
	if s.year != 0 {
		year := s.year
		sel.Year = &year
	}
	return sel, sel.Validate()
}

func newFilterCmd() *cobra.Command {
	var flags selectionFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Print the rows matching a selection, ranked by the metric",
		Example: `heartdash-cli filter --year 2015 --region europe --metric "Death Rate" --gender F --top 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := flags.selection()
			if err != nil {
				return err
			}
			c, err := load()
			if err != nil {
				return err
			}
			defer c.Filter.Close()

			df, err := c.Dashboard.Export(sel)
			if err != nil {
				return err
			}
			col, _ := sel.Column()
			ranked := df.DropNA(col).NLargest(sel.TopN, col).
				Select(heart.ColEntity, heart.ColYear, heart.ColRegion, heart.ColIncome, col)

			if asJSON {
				return printJSON(ranked.Records())
			}
			printFrame(ranked)
			fmt.Printf("\n%d of %s matching rows\n", ranked.Len(), humanize.Comma(int64(df.Len())))
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON records")
	return cmd
}

func newTrendCmd() *cobra.Command {
	var flags selectionFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print the smoothed trend and projection per region or country",
		Example: `heartdash-cli trend --metric "Prevalence Rate" --country France --country Spain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := flags.selection()
			if err != nil {
				return err
			}
			c, err := load()
			if err != nil {
				return err
			}
			defer c.Filter.Close()

			a, err := c.Dashboard.Analysis(sel)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "SERIES\tFIRST\tLAST\tSMOOTHED\tPROJECTION\t95%% INTERVAL\n")
			for _, s := range a.Series {
				if len(s.Observed) == 0 {
					continue
				}
				first, last := s.Observed[0], s.Observed[len(s.Observed)-1]
				smoothed := s.Smoothed[len(s.Smoothed)-1]
				projection, interval := "-", "-"
				if p := s.Projection; p != nil {
					projection = fmt.Sprintf("%.2f in %.0f", p.Value, p.Year)
					interval = fmt.Sprintf("%.2f to %.2f", p.Lower(), p.Upper())
				}
				fmt.Fprintf(w, "%s\t%.0f: %.2f\t%.0f: %.2f\t%.2f\t%s\t%s\n",
					s.Name, first.X, first.Y, last.X, last.Y, smoothed.Y, projection, interval)
			}
			return w.Flush()
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var flags selectionFlags
	var chart, out string
	var width, height int

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a chart as SVG or PNG",
		Example: `heartdash-cli render --chart gdp --year 2010 --out gdp.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(filepath.Ext(out))
			if err != nil {
				return err
			}
			sel, err := flags.selection()
			if err != nil {
				return err
			}
			c, err := load()
			if err != nil {
				return err
			}
			defer c.Filter.Close()

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()

			opts := render.Options{Format: format, Width: width, Height: height}
			if err := c.Dashboard.RenderChart(file, chart, sel, opts); err != nil {
				os.Remove(out)
				return err
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&chart, "chart", "gdp", "Chart: gdp, metric, population or trend")
	cmd.Flags().StringVar(&out, "out", "chart.svg", "Output file; the extension picks svg or png")
	cmd.Flags().IntVar(&width, "width", 800, "Image width")
	cmd.Flags().IntVar(&height, "height", 450, "Image height")
	return cmd
}

func newExportCmd() *cobra.Command {
	var flags selectionFlags
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rows matching a selection to XLSX",
		Example: `heartdash-cli export --year 2019 --income high --out high-income-2019.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := flags.selection()
			if err != nil {
				return err
			}
			c, err := load()
			if err != nil {
				return err
			}
			defer c.Filter.Close()

			df, err := c.Dashboard.Export(sel)
			if err != nil {
				return err
			}
			w := excel.NewWriter()
			defer w.Close()
			if err := w.WriteFrame(df, "Data"); err != nil {
				return err
			}
			if err := w.SaveAs(out); err != nil {
				return err
			}
			fmt.Printf("Wrote %s rows to %s\n", humanize.Comma(int64(df.Len())), out)
			return nil
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVar(&out, "out", "heartdash.xlsx", "Output workbook")
	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Summarize the dataset and the completeness of every column",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			defer c.Filter.Close()

			ov := c.Profiler.ProfileFrame(c.Filter.Dataset().Frame)
			fmt.Printf("%s rows, %d columns, %d entities, years %d to %d\n\n",
				humanize.Comma(int64(ov.Rows)), ov.Columns, ov.Entities, ov.YearMin, ov.YearMax)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "COLUMN\tKIND\tPRESENT\tCOMPLETE\tMEAN\tMEDIAN\tOUTLIERS\n")
			for _, p := range ov.Profiles {
				mean, median, outliers := "-", "-", "-"
				if m := p.Markers; m != nil {
					mean = fmt.Sprintf("%.2f", m.Summary.Mean)
					median = fmt.Sprintf("%.2f", m.Summary.Median)
					outliers = strconv.Itoa(m.Shape.Outliers)
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%.0f%%\t%s\t%s\t%s\n",
					p.Name, p.Kind, p.Count, p.Completeness()*100, mean, median, outliers)
			}
			return w.Flush()
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFrame(f *frame.Frame) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	cols := f.Columns()
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		for j, c := range cols {
			if j > 0 {
				fmt.Fprint(w, "\t")
			}
			if kind, _ := f.Kind(c); kind == frame.Numeric {
				fmt.Fprint(w, humanize.FormatFloat("#,###.##", row.Num(c)))
			} else {
				fmt.Fprint(w, row.Text(c))
			}
		}
		fmt.Fprintln(w)
	}
	w.Flush()
}
