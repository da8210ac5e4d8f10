package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"studyflow/backend/internal/config"
	"studyflow/backend/internal/llm"
	"studyflow/backend/internal/service"
)

var version = "dev"

// deps lets tests swap the model for a mock.
type deps struct {
	newModel func(cfg config.Config) (llm.Model, func() error)
}

func defaultDeps() deps {
	return deps{
		newModel: func(cfg config.Config) (llm.Model, func() error) {
			m := llm.NewCopilotModel(llm.CopilotOptions{
				Model:    cfg.Model.Name,
				LogLevel: cfg.Model.LogLevel,
				Timeout:  cfg.Model.Timeout,
			})
			return m, m.Close
		},
	}
}

type services struct {
	plan  *service.PlanService
	chat  *service.ChatService
	close func() error
}

func newRootCommand(d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "studyctl",
		Short: "StudyFlow from the terminal",
		Long: `studyctl generates study plans and answers study questions with the same
model and prompts the StudyFlow server uses.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	configPath := cmd.PersistentFlags().String("config", "", "Path to a YAML config file (defaults to $STUDYFLOW_CONFIG)")
	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	build := func() (*services, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		prompts, err := service.NewPrompts(cfg.Prompts.Plan, cfg.Prompts.Chat)
		if err != nil {
			return nil, err
		}
		model, closeModel := d.newModel(cfg)
		return &services{
			plan:  service.NewPlanService(model, prompts),
			chat:  service.NewChatService(model, prompts, nil),
			close: closeModel,
		}, nil
	}

	cmd.AddCommand(newPlanCommand(build))
	cmd.AddCommand(newAskCommand(build))

	return cmd
}
