package cli

import (
	"context"
	"fmt"
	"io"

	"resumelens/internal/analysis"
	"resumelens/internal/backend"
	"resumelens/internal/common"
	"resumelens/internal/session"
	"resumelens/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume and report its ATS compatibility score",
	Long: `Analyze a resume (PDF or DOCX) through the resume analysis backend.

The analysis includes:
- ATS compatibility score with a per-category breakdown
- Parsed resume data (skills, experience, education, summary)
- Optimization suggestions for skills, summary, and bullet points
- LinkedIn headline, about section, and skill suggestions

Provide --job-description to score the resume against a specific posting.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var analyzeConfig common.CommandConfig
var analyzeJobDescriptionFile string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().StringVarP(&analyzeJobDescriptionFile, "job-description", "j", "", "Job description file to score against")

	// Add completion for format flag
	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	pipeline := analysis.NewPipeline(
		backend.NewClient(&cfg.Backend, logger),
		session.NewStore(),
		cfg.App,
		logger,
	)

	logDetails := func(resumePath, jobDescription string, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume analysis",
			"resume", resumePath,
			"job_chars", len(jobDescription),
			"output_format", cmdCfg.OutputFormat)
	}

	analyzeOperation := func(ctx context.Context, filename string, size int64, content io.Reader, jobDescription string) (*types.AnalysisResult, error) {
		return pipeline.Analyze(ctx, filename, size, content, jobDescription)
	}

	err = common.RunResumeCommand(
		cmd.Context(),
		logger,
		analyzeConfig,
		args[0],
		analyzeJobDescriptionFile,
		analyzeOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	logger.Info("Resume analysis completed successfully")
	return nil
}
