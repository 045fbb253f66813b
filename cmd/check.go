package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/abodks10-ai/Pred-Guard/internal/application"
)

var checkCmd = &cobra.Command{
	Use:   "check <url>",
	Short: "Run a single security check against a URL and print the findings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		notifyEmail, _ := cmd.Flags().GetString("notify-email")
		if notifyEmail == "" {
			notifyEmail = "ops@localhost"
		}

		cfg := appConfig()
		// One-shot runs never need a database.
		cfg.DatabaseDSN = ""

		container, err := application.NewContainer(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer container.Close()

		parsed, err := url.Parse(target)
		if err != nil || parsed.Host == "" {
			return fmt.Errorf("invalid URL %q", target)
		}

		site, err := container.Websites.Create(cmd.Context(), 1, target, parsed.Host, notifyEmail, 5)
		if err != nil {
			return err
		}

		fmt.Printf("%s Checking %s ...\n", colorInfo("→"), target)
		rec, err := container.Websites.CheckNow(cmd.Context(), site.ID())
		if err != nil {
			return err
		}

		site, err = container.Websites.Get(cmd.Context(), site.ID())
		if err != nil {
			return err
		}

		fmt.Printf("\nStatus:         %s\n", formatStatusWithColor(string(site.Status())))
		fmt.Printf("Security score: %d/100\n", site.SecurityScore())
		fmt.Printf("HTTP status:    %d\n", rec.HTTPStatus())
		fmt.Printf("Response time:  %dms\n", rec.ResponseTime())

		alerts, err := container.Alerts.ListByWebsite(cmd.Context(), site.ID(), 0)
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Printf("\n%s No alerts raised\n", colorSuccess("✓"))
			return nil
		}

		fmt.Printf("\nAlerts (%d):\n", len(alerts))
		for _, a := range alerts {
			fmt.Printf("  [%s] %s — %s\n", formatSeverityWithColor(string(a.Severity())), a.Title(), a.Description())
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().String("notify-email", "", "Email recorded on the ephemeral website entry")
}
