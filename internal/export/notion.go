// Package export pushes predictive alerts to external trackers.
package export

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sustainly/esg-cli/internal/model"
	"github.com/sustainly/esg-cli/pkg/notion"
)

// NotionExporter mirrors alerts into a Notion database. Pages are keyed
// by the alert id so re-exporting updates instead of duplicating.
type NotionExporter struct {
	client notion.Client
	dbID   string
}

// NewNotionExporter builds an exporter for the given database.
func NewNotionExporter(client notion.Client, dbID string) *NotionExporter {
	return &NotionExporter{client: client, dbID: dbID}
}

// ExportAlerts upserts one page per alert. Per-alert failures are logged
// and skipped; the error reports only a total failure. Returns the number
// of alerts exported.
func (e *NotionExporter) ExportAlerts(ctx context.Context, alerts []model.PredictiveAlert) (int, error) {
	exported := 0
	for i := range alerts {
		if err := ctx.Err(); err != nil {
			return exported, eris.Wrap(err, "export: cancelled")
		}
		if err := e.exportOne(ctx, &alerts[i]); err != nil {
			zap.L().Warn("export: alert export failed",
				zap.String("alert_id", alerts[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		exported++
	}
	if exported == 0 && len(alerts) > 0 {
		return 0, eris.Errorf("export: all %d alerts failed", len(alerts))
	}
	zap.L().Info("export: alerts exported",
		zap.Int("exported", exported),
		zap.Int("total", len(alerts)),
	)
	return exported, nil
}

func (e *NotionExporter) exportOne(ctx context.Context, a *model.PredictiveAlert) error {
	existing, err := e.findPage(ctx, a.ID.String())
	if err != nil {
		return err
	}

	props := e.pageProperties(a)
	if existing != "" {
		_, err = e.client.UpdatePage(ctx, existing, &notionapi.PageUpdateRequest{
			Properties: props,
		})
		return err
	}

	_, err = e.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(e.dbID),
		},
		Properties: props,
	})
	return err
}

// findPage returns the page id holding this alert, or "" when absent.
func (e *NotionExporter) findPage(ctx context.Context, alertID string) (string, error) {
	resp, err := e.client.QueryDatabase(ctx, e.dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Alert ID",
			RichText: &notionapi.TextFilterCondition{Equals: alertID},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

func (e *NotionExporter) pageProperties(a *model.PredictiveAlert) notionapi.Properties {
	status := "Open"
	if a.IsResolved {
		status = "Resolved"
	}
	return notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: a.Title}}},
		},
		"Alert ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: a.ID.String()}}},
		},
		"User": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: a.UserID}}},
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(a.Type)},
		},
		"Risk": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(a.RiskLevel)},
		},
		"Status": notionapi.SelectProperty{
			Select: notionapi.Option{Name: status},
		},
		"Timeline Days": notionapi.NumberProperty{
			Number: float64(a.TimelineDays),
		},
		"Confidence": notionapi.NumberProperty{
			Number: a.ConfidenceScore,
		},
		"Description": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: a.Description}}},
		},
		"Recommended Actions": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: strings.Join(a.RecommendedActions, "; ")}}},
		},
		"Expires": notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: (*notionapi.Date)(&a.ExpiresAt)},
		},
	}
}
