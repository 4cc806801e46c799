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

var optimizeCmd = &cobra.Command{
	Use:   "optimize [resume-file]",
	Short: "Generate an optimized version of a resume",
	Long: `Analyze a resume and request an optimized version for a target region.

The command runs a full analysis first, then asks the backend for an
optimized resume formatted for the selected region. Use --save to download
the optimized file; without it the structured optimization result is
written to the selected output.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if optimizeConfig.OutputFormat == "" {
			optimizeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if optimizeRegion == "" {
			optimizeRegion = cfg.App.DefaultRegion
		}
		if err := common.ValidateRegion(optimizeRegion, cfg.App.Regions); err != nil {
			return err
		}
		return common.ValidateOutputFormat(optimizeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runOptimize,
}

var optimizeConfig common.CommandConfig
var optimizeJobDescriptionFile string
var optimizeRegion string
var optimizeSavePath string

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	optimizeCmd.Flags().StringVar(&optimizeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	optimizeCmd.Flags().StringVarP(&optimizeJobDescriptionFile, "job-description", "j", "", "Job description file to optimize against")
	optimizeCmd.Flags().StringVarP(&optimizeRegion, "region", "r", "", "Resume format region (default from config)")
	optimizeCmd.Flags().StringVar(&optimizeSavePath, "save", "", "Download the optimized resume file to this path")

	_ = optimizeCmd.RegisterFlagCompletionFunc("region", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.Regions, cobra.ShellCompDirectiveNoFileComp
	})
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	client := backend.NewClient(&cfg.Backend, logger)
	pipeline := analysis.NewPipeline(client, session.NewStore(), cfg.App, logger)

	logDetails := func(resumePath, jobDescription string, cmdCfg common.CommandConfig) {
		logger.Info("Starting resume optimization",
			"resume", resumePath,
			"region", optimizeRegion,
			"job_chars", len(jobDescription),
			"output_format", cmdCfg.OutputFormat)
	}

	optimizeOperation := func(ctx context.Context, filename string, size int64, content io.Reader, jobDescription string) (*types.OptimizeResponse, error) {
		if _, err := pipeline.Analyze(ctx, filename, size, content, jobDescription); err != nil {
			return nil, err
		}
		return pipeline.Optimize(ctx, optimizeRegion)
	}

	var optimized *types.OptimizeResponse
	captureOperation := func(ctx context.Context, filename string, size int64, content io.Reader, jobDescription string) (*types.OptimizeResponse, error) {
		resp, err := optimizeOperation(ctx, filename, size, content, jobDescription)
		optimized = resp
		return resp, err
	}

	err = common.RunResumeCommand(
		cmd.Context(),
		logger,
		optimizeConfig,
		args[0],
		optimizeJobDescriptionFile,
		captureOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to optimize resume: %w", err)
	}

	if optimizeSavePath != "" && optimized != nil {
		data, err := client.DownloadFile(cmd.Context(), optimized.OptimizedFilename)
		if err != nil {
			return fmt.Errorf("failed to download optimized resume: %w", err)
		}
		fileProcessor := common.NewFileProcessor(logger)
		if err := fileProcessor.WriteFile(optimizeSavePath, string(data)); err != nil {
			return err
		}
		logger.Info("Optimized resume saved",
			"path", optimizeSavePath,
			"backend_filename", optimized.OptimizedFilename)
	}

	logger.Info("Resume optimization completed successfully")
	return nil
}
