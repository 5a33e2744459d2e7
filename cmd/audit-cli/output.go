package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"indiamart-audit/internal/audit"
	"indiamart-audit/internal/models"
)

func printSummary(w io.Writer, s *audit.Summary) {
	fmt.Fprintf(w, "Session:           %s\n", s.SessionID)
	fmt.Fprintf(w, "Status:            %s\n", s.Status)
	fmt.Fprintf(w, "Records:           %d\n", s.TotalRecords)
	fmt.Fprintf(w, "PASS / ERROR:      %d / %d\n", s.Passed, s.Errors)
	fmt.Fprintf(w, "Advisory failures: %d\n", s.AdvisoryFailures)
	fmt.Fprintf(w, "Duration:          %s\n", (time.Duration(s.DurationMs) * time.Millisecond).String())

	labels := make([]string, 0, len(s.ByLabel))
	for l := range s.ByLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nLABEL\tCOUNT")
	for _, l := range labels {
		fmt.Fprintf(tw, "%s\t%d\n", l, s.ByLabel[l])
	}
	_ = tw.Flush()

	if s.Error != "" {
		fmt.Fprintf(w, "\nError: %s\n", s.Error)
	}
}

func printResults(w io.Writer, results []models.AuditResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORD\tCATEGORY\tQUANTITY\tTHRESHOLD\tOUTCOME\tLABEL\tADVISORY")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%s\t%s\n",
			r.RecordID,
			r.CategoryID,
			r.Quantity.Literal(), r.QuantityUnit,
			r.Verdict.ThresholdDisplay,
			r.Verdict.Outcome,
			r.Verdict.CategoryLabel,
			r.Advisory.SuggestedType,
		)
	}
	_ = tw.Flush()
}

func printSession(w io.Writer, s *models.AuditSession) {
	fmt.Fprintf(w, "Session:           %s\n", s.ID)
	fmt.Fprintf(w, "Status:            %s\n", s.Status)
	fmt.Fprintf(w, "Processed:         %d / %d\n", s.ProcessedRecords, s.TotalRecords)
	fmt.Fprintf(w, "Advisory failures: %d\n", s.AdvisoryFailures)
	fmt.Fprintf(w, "Started:           %s\n", s.StartedAt.Format(time.RFC3339))
	if s.FinishedAt != nil {
		fmt.Fprintf(w, "Finished:          %s\n", s.FinishedAt.Format(time.RFC3339))
	}
	if s.Error != "" {
		fmt.Fprintf(w, "Error:             %s\n", s.Error)
	}
}
