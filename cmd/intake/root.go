package main

import (
	"appliance-intake-service/internal/adapters/geocode"
	"appliance-intake-service/internal/adapters/history"
	"appliance-intake-service/internal/adapters/navigator"
	"appliance-intake-service/internal/config"
	"appliance-intake-service/internal/domain"
	"appliance-intake-service/internal/platform/logging"
	"appliance-intake-service/internal/services"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	server         string
	consultType    string
	popup          bool
	timeout        time.Duration
	companyName    string
	companyAddress string
	logLevel       string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "intake",
		Short:        "Run the address intake flow against a deployed geocode proxy",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.logLevel, "text")
		},
	}

	defaults := domain.DefaultNavigationConfig()
	pf := root.PersistentFlags()
	pf.StringVar(&opts.server, "server", config.Get("INTAKE_SERVER", "http://localhost:8080"), "base URL of the service exposing /api/geocode")
	pf.StringVarP(&opts.consultType, "type", "t", "", "consultation type (boiler, gas, dryer, elec, builtin, sash)")
	pf.DurationVar(&opts.timeout, "timeout", services.DefaultResolveTimeout, "upper bound for one resolution")
	pf.StringVar(&opts.companyName, "company-name", config.Get("COMPANY_NAME", defaults.Company.Name), "directions origin name")
	pf.StringVar(&opts.companyAddress, "company-address", config.Get("COMPANY_ADDRESS", defaults.Company.Address), "directions origin address")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	search := &cobra.Command{
		Use:   "search <address>",
		Short: "Geocode an address, classify it and print the resulting navigation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(cmd.Context(), cmd.OutOrStdout(), opts, strings.Join(args, " "), false)
		},
	}
	search.Flags().BoolVar(&opts.popup, "popup", true, "whether a new tab may be opened for directions")

	skip := &cobra.Command{
		Use:   "skip [address]",
		Short: "Print the next-step page reached without a map search",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(cmd.Context(), cmd.OutOrStdout(), opts, strings.Join(args, " "), true)
		},
	}

	geocodeCmd := &cobra.Command{
		Use:   "geocode <address>",
		Short: "Resolve an address through the proxy only",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := geocode.NewProxyGeocoder(opts.server, opts.timeout)
			if err != nil {
				return err
			}
			res, err := g.Geocode(cmd.Context(), strings.Join(args, " "))
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "no match")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", res.Coordinates, res.Label)
			return nil
		},
	}

	root.AddCommand(search, skip, geocodeCmd)
	return root
}

func runFlow(ctx context.Context, out io.Writer, opts *options, query string, skip bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, err := geocode.NewProxyGeocoder(opts.server, opts.timeout)
	if err != nil {
		return err
	}

	nav := domain.DefaultNavigationConfig()
	nav.Company = domain.Company{Name: opts.companyName, Address: opts.companyAddress}

	store := history.NewMemoryStore()
	resolver := services.NewResolver(g, store, nil, nav, services.ResolverOptions{Timeout: opts.timeout})

	const sid = "cli"
	rec := navigator.NewRecorder(opts.popup)
	req := services.SearchRequest{SessionID: sid, Query: query, ConsultType: opts.consultType}

	var d *services.Decision
	if skip {
		d, err = resolver.Skip(ctx, req, rec)
	} else {
		d, err = resolver.Search(ctx, req, rec)
	}
	switch {
	case errors.Is(err, domain.ErrEmptyInput):
		return errors.New(services.EmptyInputPrompt)
	case err != nil:
		return errors.New(services.FailureMessage(err))
	}

	fmt.Fprintf(out, "outcome: %s\n", d.Outcome)
	if d.Label != "" {
		fmt.Fprintf(out, "label: %s\n", d.Label)
	}
	if d.Keyword != "" {
		fmt.Fprintf(out, "matched: %s\n", d.Keyword)
	}
	for _, a := range rec.Actions() {
		fmt.Fprintf(out, "%s: %s\n", a.Kind, a.URL)
	}
	if d.NextURL != d.NavigateTo {
		fmt.Fprintf(out, "then: %s\n", d.NextURL)
	}

	entries, err := store.List(ctx, sid)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "history: %s -> %s\n", e.Label, e.URL)
	}
	return nil
}
