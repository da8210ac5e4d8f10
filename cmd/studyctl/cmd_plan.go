package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"studyflow/backend/internal/model"
	"studyflow/backend/internal/service"
)

func newPlanCommand(build func() (*services, error)) *cobra.Command {
	var (
		subjects []string
		minutes  int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate a study plan",
		Example: `  studyctl plan -s Math -s History -m 90
  studyctl plan --subject "Biology, Chemistry" --minutes 60 -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "table", "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
			}

			svc, err := build()
			if err != nil {
				return err
			}
			defer svc.close()

			plan, apiErr := svc.plan.Generate(cmd.Context(), service.PlanInput{
				Subjects:             service.SplitSubjects(subjects...),
				AvailableTimeMinutes: minutes,
			})
			if apiErr != nil {
				return apiErr
			}
			return renderPlan(cmd.OutOrStdout(), plan, output)
		},
	}

	cmd.Flags().StringSliceVarP(&subjects, "subject", "s", nil, "Subject to study (repeatable or comma separated)")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 60, "Available study time in minutes")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json or yaml")

	return cmd
}

func renderPlan(w io.Writer, plan *model.StudyPlan, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	}

	data := pterm.TableData{{"#", "Subject", "Minutes", "Note"}}
	total := 0
	for i, item := range plan.Plan {
		data = append(data, []string{strconv.Itoa(i + 1), item.Subject, strconv.Itoa(item.DurationMinutes), item.Note})
		total += item.DurationMinutes
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n\nTotal: %d min\n", table, total)
	return err
}
