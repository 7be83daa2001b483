package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sustainly/esg-cli/internal/export"
	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/internal/predict"
	"github.com/sustainly/esg-cli/pkg/notion"
)

var (
	alertsUser     string
	alertsIndustry string
	alertsFormat   string
	alertsID       string
	alertsCalendar string
	alertsNotionDB string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Generate, list, resolve, and export predictive alerts",
}

var alertsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the alert rules for one user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		var calendar []model.RegulatoryCalendarEntry
		if alertsCalendar != "" {
			calendar, err = predict.LoadCalendarFile(alertsCalendar)
		} else {
			calendar, err = loadCalendar(ctx)
		}
		if err != nil {
			return err
		}

		gen := predict.NewGenerator(st, calendar)
		alerts, err := gen.Generate(ctx, alertsUser, alertsIndustry)
		if err != nil {
			return err
		}

		if alertsFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(alerts)
		}
		if len(alerts) == 0 {
			fmt.Println("no alerts fired")
			return nil
		}
		for i := range alerts {
			printAlert(&alerts[i])
		}
		return nil
	},
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's active alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		alerts, err := st.ListActiveAlerts(ctx, alertsUser, time.Now().UTC())
		if err != nil {
			return err
		}

		if alertsFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(alerts)
		}
		if len(alerts) == 0 {
			fmt.Println("no active alerts")
			return nil
		}
		for i := range alerts {
			printAlert(&alerts[i])
		}
		return nil
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Mark an alert resolved",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := uuid.Parse(alertsID)
		if err != nil {
			return eris.Wrapf(err, "parse alert id %q", alertsID)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ResolveAlert(ctx, alertsUser, id, time.Now().UTC()); err != nil {
			return err
		}
		fmt.Printf("alert %s resolved\n", id)
		return nil
	},
}

var alertsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's active alerts to Notion",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dbID := alertsNotionDB
		if dbID == "" {
			dbID = cfg.Notion.AlertDB
		}
		if cfg.Notion.Token == "" || dbID == "" {
			return eris.New("notion export requires ESG_NOTION_TOKEN and a database id (--notion-db or ESG_NOTION_ALERT_DB)")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		alerts, err := st.ListActiveAlerts(ctx, alertsUser, time.Now().UTC())
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Println("no active alerts to export")
			return nil
		}

		exporter := export.NewNotionExporter(notion.NewClient(cfg.Notion.Token), dbID)
		exported, err := exporter.ExportAlerts(ctx, alerts)
		if err != nil {
			return err
		}
		fmt.Printf("exported %d of %d alerts\n", exported, len(alerts))
		return nil
	},
}

func printAlert(a *model.PredictiveAlert) {
	fmt.Printf("[%s] %s (%s)\n", a.RiskLevel, a.Title, a.Type)
	fmt.Printf("  id=%s  timeline=%dd  confidence=%.2f  expires=%s\n",
		a.ID, a.TimelineDays, a.ConfidenceScore, a.ExpiresAt.Format("2006-01-02"))
	if a.Description != "" {
		fmt.Printf("  %s\n", a.Description)
	}
	for _, action := range a.RecommendedActions {
		fmt.Printf("  - %s\n", action)
	}
}

func init() {
	alertsCmd.PersistentFlags().StringVar(&alertsUser, "user", "", "user id (required)")
	alertsCmd.PersistentFlags().StringVar(&alertsFormat, "format", "table", "output format: table or json")
	_ = alertsCmd.MarkPersistentFlagRequired("user")

	alertsGenerateCmd.Flags().StringVar(&alertsIndustry, "industry", "retail", "industry for the regulatory calendar")
	alertsGenerateCmd.Flags().StringVar(&alertsCalendar, "calendar", "", "regulatory calendar file (overrides config)")
	alertsResolveCmd.Flags().StringVar(&alertsID, "id", "", "alert id (required)")
	_ = alertsResolveCmd.MarkFlagRequired("id")
	alertsExportCmd.Flags().StringVar(&alertsNotionDB, "notion-db", "", "Notion database id (overrides config)")

	alertsCmd.AddCommand(alertsGenerateCmd, alertsListCmd, alertsResolveCmd, alertsExportCmd)
	rootCmd.AddCommand(alertsCmd)
}
