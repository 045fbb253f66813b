package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abodks10-ai/Pred-Guard/internal/application"
)

var websitesCmd = &cobra.Command{
	Use:   "websites",
	Short: "Manage monitored websites",
}

var websitesAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Register a website for monitoring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("notify-email")
		interval, _ := cmd.Flags().GetInt("interval")
		userID, _ := cmd.Flags().GetInt64("user-id")

		container, err := application.NewContainer(cmd.Context(), appConfig(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer container.Close()

		site, err := container.Websites.Create(cmd.Context(), userID, args[0], name, email, interval)
		if err != nil {
			return err
		}
		fmt.Printf("%s Registered website #%d (%s, every %dm)\n", colorSuccess("✓"), site.ID(), site.URL(), site.CheckInterval())
		return nil
	},
}

var websitesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored websites",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user-id")

		container, err := application.NewContainer(cmd.Context(), appConfig(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer container.Close()

		sites, err := container.Websites.List(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(sites) == 0 {
			fmt.Println("No websites registered")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tURL\tSTATUS\tSCORE\tINTERVAL\tACTIVE")
		for _, s := range sites {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%dm\t%t\n",
				s.ID(), s.URL(), formatStatusWithColor(string(s.Status())), s.SecurityScore(), s.CheckInterval(), s.Active())
		}
		return w.Flush()
	},
}

var websitesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a website and all its monitoring data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid website ID %q", args[0])
		}

		container, err := application.NewContainer(cmd.Context(), appConfig(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer container.Close()

		if err := container.Websites.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("%s Removed website #%d\n", colorSuccess("✓"), id)
		return nil
	},
}

func init() {
	websitesAddCmd.Flags().String("name", "", "Display name (defaults to the URL host)")
	websitesAddCmd.Flags().String("notify-email", "", "Email address for alert notifications")
	websitesAddCmd.Flags().Int("interval", 15, "Check interval in minutes (5, 10, 15, 30 or 60)")
	websitesAddCmd.Flags().Int64("user-id", 1, "Owning user ID")
	websitesListCmd.Flags().Int64("user-id", 0, "Filter by owning user ID (0 lists all)")

	websitesCmd.AddCommand(websitesAddCmd)
	websitesCmd.AddCommand(websitesListCmd)
	websitesCmd.AddCommand(websitesRemoveCmd)
}
