package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/client"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/logging"
)

var (
	generateServer   string
	generateToken    string
	generateEmail    string
	generateTask     string
	generateProfile  string
	generateJob      string
	generateOut      outputPaths
	generateResponse string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Stream a tailored resume from a running server",
	Long: `Send a profile and a job description to the server, print the model output as it
arrives, then show the gap analysis and optionally export the resume.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateServer, "server", envOr("RESUME_TAILOR_URL", "http://localhost:8080"), "Server base URL")
	generateCmd.Flags().StringVar(&generateToken, "token", os.Getenv("RESUME_TAILOR_TOKEN"), "Bearer token")
	generateCmd.Flags().StringVar(&generateEmail, "email", "", "Log in with this email (password from RESUME_TAILOR_PASSWORD)")
	generateCmd.Flags().StringVar(&generateTask, "task", "", "Task ID")
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Path to the existing profile (.pdf, .docx, .txt, .md)")
	generateCmd.Flags().StringVar(&generateJob, "job", "", "Path to the job description")
	generateCmd.Flags().StringVar(&generateOut.pdf, "pdf", "", "Write the resume as PDF to this path")
	generateCmd.Flags().StringVar(&generateOut.html, "html", "", "Write the resume and gaps as HTML to this path")
	generateCmd.Flags().StringVar(&generateOut.tex, "tex", "", "Write the resume as LaTeX to this path")
	generateCmd.Flags().StringVar(&generateResponse, "save-response", "", "Save the raw response to this path")
	_ = generateCmd.MarkFlagRequired("task")
	_ = generateCmd.MarkFlagRequired("profile")
	_ = generateCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogDebug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	profile, err := readDocument(generateProfile)
	if err != nil {
		return err
	}
	job, err := readDocument(generateJob)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c := client.New(generateServer, generateToken, client.WithLogger(logger))
	if generateEmail != "" {
		if _, err := c.Login(ctx, generateEmail, os.Getenv("RESUME_TAILOR_PASSWORD")); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	session := client.NewSession()
	outcome, err := c.Generate(ctx, client.GenerateRequest{
		TaskID:          generateTask,
		ExistingProfile: profile,
		JobDescription:  job,
	}, session, func(delta string) {
		fmt.Fprint(out, delta)
	})
	fmt.Fprintln(out)
	if generateResponse != "" && session.Live() != "" {
		if werr := os.WriteFile(generateResponse, []byte(session.Live()), 0o644); werr != nil {
			logger.Warn("failed to save response", zap.Error(werr))
		}
	}
	if err != nil {
		if errors.Is(err, client.ErrIncomplete) {
			return fmt.Errorf("%w; the partial output above cannot be used, please retry", err)
		}
		return err
	}

	printGaps(out, outcome.Result)
	if outcome.GapsSaved != nil && !*outcome.GapsSaved && outcome.Result.Gaps != "" {
		fmt.Fprintln(out, "Note: the gap analysis could not be saved on the server.")
	}
	if generateOut.empty() {
		return nil
	}
	return writeOutputs(out, outcome.Result, generateOut, cfg.Export)
}

// readDocument extracts text from a profile or job file.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ingestion.ExtractProfileText(path, data)
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
