package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/riskgraph/internal/health"
	"github.com/riskgraph/internal/incident"
	"github.com/riskgraph/pkg/models"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serviceLabel(code, name string) string {
	if name == "" || name == code {
		return code
	}
	return code + " - " + name
}

func writeScenario(w io.Writer, r *incident.ScenarioResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s (Hazard: %s) - Duration: %dh\n", r.Scenario.Name, r.Hazard.Name, r.DurationHours)
	fmt.Fprintf(&b, "Failed assets: %d\n", len(r.FailedAssetIDs))

	if len(r.Services) == 0 {
		b.WriteString("No impacted services found.\n")
	}
	for _, svc := range r.Services {
		fmt.Fprintf(&b, "- %s | Failed assets: %d\n", serviceLabel(svc.ServiceCode, svc.Name), len(svc.FailedAssetIDs))
		if len(svc.Impact) == 0 {
			b.WriteString("  Impact: No BIA profile\n")
			continue
		}
		categories := make([]string, 0, len(svc.Impact))
		for category := range svc.Impact {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			detail := svc.Impact[category]
			fmt.Fprintf(&b, "  %s: %s (L%d)\n", category, detail.Label, detail.Level)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeIncidents(w io.Writer, results []incident.Result) error {
	var b strings.Builder
	for _, r := range results {
		id := r.ID
		if id == "" {
			id = "ad hoc"
		}
		fmt.Fprintf(&b, "Incident: %s - Outage: %dm\n", id, r.OutageMinutes)
		if len(r.Impacts) == 0 {
			b.WriteString("No impacted services found.\n")
		}
		for _, impact := range r.Impacts {
			writeImpact(&b, impact)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeImpact(b *strings.Builder, impact models.ServiceImpact) {
	crisis := "no"
	if impact.CrisisRecommended {
		crisis = "yes"
	}
	fmt.Fprintf(b, "- %s | %s | MTPD %.0f%% | Crisis: %s\n",
		serviceLabel(impact.ServiceCode, impact.Name), impact.ImpactLevel, impact.MTPDProgress*100, crisis)
	if impact.NextThresholdMinutes != nil && impact.NextThresholdLevel != nil {
		fmt.Fprintf(b, "  Next: %s at %dm\n", *impact.NextThresholdLevel, *impact.NextThresholdMinutes)
	}
	if len(impact.Breaches) > 0 {
		fmt.Fprintf(b, "  Breaches: %s\n", strings.Join(impact.Breaches, ", "))
	}
	if len(impact.Warnings) > 0 {
		fmt.Fprintf(b, "  Warnings: %s\n", strings.Join(impact.Warnings, ", "))
	}
}

func writeSnapshot(w io.Writer, s models.RiskScoringSnapshot) error {
	method := s.MethodCode
	if method == "" {
		method = "classic"
	}
	_, err := fmt.Fprintf(w, "Risk: %s | Method: %s | Inherent: %.2f | Residual: %.2f\n",
		s.RiskID, method, s.InherentScore, s.ResidualScore)
	return err
}

func writeHealth(w io.Writer, report health.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", report.Status)
	for _, c := range report.Checks {
		fmt.Fprintf(&b, "- %s: %s", c.Name, c.Status)
		if c.Message != "" {
			fmt.Fprintf(&b, " (%s)", c.Message)
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
