package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"adte.com/adte/buyer-agent/internal/campaign"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type createOptions struct {
	file     string
	buyerRef string
	spanDays int
	protocol string
	agentURL string
	dryRun   bool
}

func newCreateMediaBuyCmd(a *app) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create-media-buy",
		Short: "Create one media buy starting tomorrow (UTC)",
		Long: `Create one media buy on the configured sales agent.

Without --file the reference campaign is used: two display packages for
Nike with budgets of 30000 and 20000.

Exit status is 0 when the media buy is created, 2 when the sales agent
rejects it and 1 for any other failure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.createMediaBuy(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "YAML campaign definition (overrides CAMPAIGN_FILE)")
	flags.StringVar(&opts.buyerRef, "buyer-ref", "", "buyer reference for the media buy")
	flags.IntVar(&opts.spanDays, "span-days", 0, "campaign length in days (overrides CAMPAIGN_SPAN_DAYS)")
	flags.StringVar(&opts.protocol, "protocol", "", "transport to the sales agent: mcp or rest (overrides ADCP_PROTOCOL)")
	flags.StringVar(&opts.agentURL, "agent-url", "", "sales agent endpoint (overrides ADCP_AGENT_URL)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the request instead of sending it")
	return cmd
}

func (a *app) createMediaBuy(cmd *cobra.Command, opts *createOptions) error {
	if opts.protocol != "" {
		a.cfg.Agent.Protocol = opts.protocol
	}
	if opts.agentURL != "" {
		a.cfg.Agent.URL = opts.agentURL
	}
	if opts.spanDays != 0 {
		a.cfg.Campaign.SpanDays = opts.spanDays
	}
	if opts.file != "" {
		a.cfg.Campaign.File = opts.file
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	def, err := a.loadDefinition(opts.buyerRef)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	runner := &campaign.Runner{
		Clock:   campaign.RealClock{},
		Span:    campaign.SpanDays(a.cfg.Campaign.SpanDays),
		Timeout: a.cfg.Agent.Timeout,
		Logger:  a.logger,
		Out:     out,
	}

	if opts.dryRun {
		return printPlan(runner, def, out)
	}

	submitter, err := newSubmitter(a.cfg, a.logger)
	if err != nil {
		return err
	}
	runner.Submitter = submitter

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome := runner.Run(ctx, def)
	if code := campaign.ExitCode(outcome); code != campaign.ExitAccepted {
		return exitError{code: code}
	}
	return nil
}

func (a *app) loadDefinition(buyerRef string) (campaign.Definition, error) {
	def := campaign.DefaultDefinition()
	if a.cfg.Campaign.File != "" {
		loaded, err := campaign.LoadDefinition(a.cfg.Campaign.File)
		if err != nil {
			return campaign.Definition{}, err
		}
		def = loaded
	}
	if buyerRef != "" {
		def.BuyerRef = buyerRef
	}
	if def.BuyerRef == "" {
		def.BuyerRef = "campaign_" + uuid.NewString()
		a.logger.Info("generated buyer_ref", "buyer_ref", def.BuyerRef)
	}
	return def, nil
}

func printPlan(runner *campaign.Runner, def campaign.Definition, out io.Writer) error {
	window, req, err := runner.Plan(def)
	fmt.Fprintf(out, "Start time: %s\n", window.StartTime())
	fmt.Fprintf(out, "End time: %s\n", window.EndTime())
	if err != nil {
		campaign.Report(out, campaign.Failed{Err: err})
		return exitError{code: campaign.ExitFailed}
	}

	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
