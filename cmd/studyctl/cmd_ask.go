package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"studyflow/backend/internal/service"
)

func newAskCommand(build func() (*services, error)) *cobra.Command {
	return &cobra.Command{
		Use:     "ask <question...>",
		Short:   "Ask the study assistant a question",
		Example: `  studyctl ask "What is the chain rule?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := build()
			if err != nil {
				return err
			}
			defer svc.close()

			answer, apiErr := svc.chat.Ask(cmd.Context(), service.ChatInput{Query: strings.Join(args, " ")})
			if apiErr != nil {
				return apiErr
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), pterm.DefaultBox.WithTitle("Answer").Sprint(answer.Answer))
			return err
		},
	}
}
