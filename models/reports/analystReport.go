package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/logistics_backend/models"
	"google.golang.org/genai"
)

const defaultReportModel = "gemini-2.5-flash"

// Pendency above this many days counts as long pending in the briefing.
const longPendingThreshold = 5

type reportCase struct {
	Order    string `json:"order"`
	DaysOpen int    `json:"daysOpen"`
	Issue    string `json:"issue"`
	Desc     string `json:"desc,omitempty"`
	Customer string `json:"customer,omitempty"`
}

type reportEmergency struct {
	Order     string `json:"order"`
	Issue     string `json:"issue"`
	Warehouse string `json:"warehouse"`
}

type reportSummary struct {
	TotalOpen        int               `json:"totalOpen"`
	EmergencyCount   int               `json:"emergencyCount"`
	LongPendingCount int               `json:"longPendingCount"`
	TopPendingCases  []reportCase      `json:"topPendingCases"`
	EmergencySamples []reportEmergency `json:"emergencySamples"`
}

// buildReportSummary condenses the open-case set so the prompt stays
// small: counts plus a sample of the worst offenders.
func buildReportSummary(records []*models.CaseRecord) reportSummary {
	open := models.OpenCasesByPendency(records)

	summary := reportSummary{
		TotalOpen:        len(open),
		TopPendingCases:  []reportCase{},
		EmergencySamples: []reportEmergency{},
	}
	for _, rec := range open {
		if rec.IsEmergency {
			summary.EmergencyCount++
			if len(summary.EmergencySamples) < 5 {
				summary.EmergencySamples = append(summary.EmergencySamples, reportEmergency{
					Order:     rec.OrderNumber,
					Issue:     rec.AbnormalType,
					Warehouse: rec.Warehouse,
				})
			}
		}
		if rec.CalculatedPendency > longPendingThreshold {
			summary.LongPendingCount++
			if len(summary.TopPendingCases) < 10 {
				summary.TopPendingCases = append(summary.TopPendingCases, reportCase{
					Order:    rec.OrderNumber,
					DaysOpen: rec.CalculatedPendency,
					Issue:    rec.AbnormalType,
					Desc:     rec.Description,
					Customer: rec.CustomerName,
				})
			}
		}
	}
	return summary
}

// GenerateAnalystReport asks the text-generation service for a
// Markdown operations briefing over the current dataset. The dataset
// itself is never touched; a failed call surfaces to the caller.
func GenerateAnalystReport(ctx context.Context, records []*models.CaseRecord) (string, error) {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		return "", errors.New("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	summaryJSON, err := json.MarshalIndent(buildReportSummary(records), "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are a Senior Logistics Analyst for 'Logistic Hub'.
Analyze the following current operational data summary:
%s

Please provide a concise strategic report in Markdown format covering:
1. **Urgent Attention**: Highlight the emergency cases and longest pending orders.
2. **Pattern Recognition**: Identify common issues (Abnormal Types) causing delays based on the samples.
3. **Action Plan**: Suggest 3 specific actions the logistics team should take today to reduce pendency.

Keep the tone professional and action-oriented.`, summaryJSON)

	model := strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if model == "" {
		model = defaultReportModel
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	return result.Text(), nil
}
