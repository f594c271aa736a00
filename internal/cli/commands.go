package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpggio/profitability/internal/dataset"
	"github.com/rpggio/profitability/internal/domain/capacity"
	"github.com/rpggio/profitability/internal/domain/ledger"
	"github.com/rpggio/profitability/internal/domain/profitability"
	"github.com/rpggio/profitability/internal/domain/valuation"
	"github.com/spf13/cobra"
)

// periodFlags are the period arguments every report takes.
type periodFlags struct {
	year  int
	month int
	from  string
	to    string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.year, "year", 0, "Calendar year; alone it selects the whole year")
	cmd.Flags().IntVar(&p.month, "month", 0, "Month 1-12 within --year")
	cmd.Flags().StringVar(&p.from, "from", "", "Range start (YYYY-MM-DD); requires --to")
	cmd.Flags().StringVar(&p.to, "to", "", "Inclusive range end (YYYY-MM-DD)")
}

func (p *periodFlags) period(o *options) (ledger.Period, error) {
	return ledger.ParsePeriod(p.year, p.month, p.from, p.to, o.now())
}

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s).\n", e.db.Dialect())
			return nil
		},
	}
}

func newLoadCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Load a YAML dataset into the database",
		Long: `Load upserts areas, people, clients, services and projects, then
appends entries, revenue, overhead, invoices and API keys. Rows that
already exist are skipped, so a file can be loaded twice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dataset.ReadFile(args[0])
			if err != nil {
				return err
			}
			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			stats, err := dataset.NewLoader(e.app.Repos, o.logger()).Load(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s: %d written, %d skipped.\n", args[0], stats.Written, stats.Skipped)
			return nil
		},
	}
}

func newReportsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List the available reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.render(cmd, "Reports", profitability.Kinds())
		},
	}
}

func newReportCmd(o *options) *cobra.Command {
	var (
		p     periodFlags
		limit int
	)
	cmd := &cobra.Command{
		Use:   "report <kind>",
		Short: "Run a period report",
		Example: `  profitctl report productivity --year 2024 --month 3 --viewer ana
  profitctl report top-clients --year 2024 --limit 3 -f csv
  profitctl report executive --year 2024 -f xlsx -o summary.xlsx`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			var kinds []string
			for _, k := range profitability.Kinds() {
				kinds = append(kinds, string(k.Kind))
			}
			return kinds, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := profitability.ParseKind(args[0])
			if err != nil {
				return err
			}
			period, err := p.period(o)
			if err != nil {
				return err
			}
			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			scope, err := o.scope(cmd.Context(), e)
			if err != nil {
				return err
			}
			data, err := e.app.Engine.Report(cmd.Context(), scope, kind, profitability.Query{Period: period, Limit: limit})
			if err != nil {
				return err
			}
			return o.render(cmd, fmt.Sprintf("%s %s", kind, period), data)
		},
	}
	p.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows for ranked reports")
	return cmd
}

func newHourlyCostCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hourly-cost <person>",
		Short: "Show a person's hourly cost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			scope, err := o.scope(cmd.Context(), e)
			if err != nil {
				return err
			}
			cost, err := e.app.Engine.HourlyCost(cmd.Context(), scope, args[0])
			if err != nil {
				return err
			}
			if cost == nil {
				return fmt.Errorf("%w: %s", ledger.ErrPersonNotFound, args[0])
			}
			return o.render(cmd, "Hourly cost", cost)
		},
	}
}

func newProjectCmd(o *options) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "project <service>",
		Short: "Project a contracted service's annual revenue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = o.now().Year()
			}
			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			proj, err := e.app.Engine.ProjectAnnualRevenue(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}
			if proj == nil {
				return fmt.Errorf("%w: %s", ledger.ErrServiceNotFound, args[0])
			}
			// Tables show the month runs; json keeps the whole projection.
			if o.format == FormatJSON {
				return o.render(cmd, "Projection", proj)
			}
			title := fmt.Sprintf("%s %d: %s projected", proj.Name, proj.Year, strconv.FormatFloat(proj.Projected, 'f', 2, 64))
			return o.render(cmd, title, proj.Segments)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year to project (default current year)")
	return cmd
}

func newHiringCmd(o *options) *cobra.Command {
	var (
		p   periodFlags
		req capacity.HiringRequest
	)
	cmd := &cobra.Command{
		Use:   "hiring",
		Short: "Check whether a seniority tier can absorb new demand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			period, err := p.period(o)
			if err != nil {
				return err
			}
			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			scope, err := o.scope(cmd.Context(), e)
			if err != nil {
				return err
			}
			sig, err := e.app.Engine.HiringNeed(cmd.Context(), scope, period, req)
			if err != nil {
				return err
			}
			return o.render(cmd, "Hiring need", sig)
		},
	}
	p.register(cmd)
	cmd.Flags().StringVar(&req.Seniority, "seniority", "", "Seniority tier")
	cmd.Flags().StringVar(&req.AreaID, "area", "", "Restrict to one area")
	cmd.Flags().Float64Var(&req.DemandHours, "demand", 0, "New hours the tier must absorb")
	_ = cmd.MarkFlagRequired("seniority")
	_ = cmd.MarkFlagRequired("demand")
	return cmd
}

func newQuoteCmd(o *options) *cobra.Command {
	var (
		name        string
		clientID    string
		serviceID   string
		lines       []string
		overheadPct float64
		marginPct   float64
		save        bool
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price staffed hours",
		Example: `  profitctl quote --name "Portal v2" --line ana=40 --line bob=80:spot
  profitctl quote --name Audit --client globex --line cid=12 --margin 30 --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := valuation.QuoteRequest{Name: name, ClientID: clientID, ServiceID: serviceID}
			for _, arg := range lines {
				line, err := parseLine(arg)
				if err != nil {
					return err
				}
				req.Lines = append(req.Lines, line)
			}
			if cmd.Flags().Changed("overhead") {
				req.OverheadPct = &overheadPct
			}
			if cmd.Flags().Changed("margin") {
				req.MarginPct = &marginPct
			}

			e, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			scope, err := o.scope(cmd.Context(), e)
			if err != nil {
				return err
			}
			if err := scope.RequireAll(); err != nil {
				return err
			}
			req.CreatedBy = scope.ViewerID()

			var q *valuation.Quote
			if save {
				q, err = e.app.Quotes.CreateQuote(cmd.Context(), req)
			} else {
				q, err = e.app.Quotes.Estimate(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			if o.format == FormatJSON {
				return o.render(cmd, "Quote", q)
			}
			title := fmt.Sprintf("%s: %s price", q.Name, strconv.FormatFloat(q.Price, 'f', 2, 64))
			return o.render(cmd, title, q.Lines)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Quote name")
	cmd.Flags().StringVar(&clientID, "client", "", "Prospective client")
	cmd.Flags().StringVar(&serviceID, "service", "", "Service being priced")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "Staffing line as person=hours[:billing]; repeatable")
	cmd.Flags().Float64Var(&overheadPct, "overhead", 0, "Overhead percentage (default from configuration)")
	cmd.Flags().Float64Var(&marginPct, "margin", 0, "Margin percentage (default from configuration)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the quote")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// parseLine reads person=hours with an optional :billing suffix.
func parseLine(arg string) (valuation.LineRequest, error) {
	person, rest, ok := strings.Cut(arg, "=")
	if !ok || person == "" {
		return valuation.LineRequest{}, fmt.Errorf("invalid line %q: want person=hours[:billing]", arg)
	}
	hoursStr, billing, _ := strings.Cut(rest, ":")
	hours, err := strconv.ParseFloat(hoursStr, 64)
	if err != nil {
		return valuation.LineRequest{}, fmt.Errorf("invalid hours in line %q: %w", arg, err)
	}
	return valuation.LineRequest{PersonID: person, Hours: hours, Billing: ledger.Billing(billing)}, nil
}
