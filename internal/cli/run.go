package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harun/juru/internal/config"
	"github.com/harun/juru/internal/logger"
	"github.com/harun/juru/pkg/computer"
	"github.com/harun/juru/pkg/driver"
	"github.com/harun/juru/pkg/provider"
	"github.com/harun/juru/pkg/shell"
	"github.com/harun/juru/pkg/tools"
)

var (
	runMaxIterations int
	runKeepImages    int
	runModel         string
	runWorkdir       string
	runStartURL      string
	runHeaded        bool
	runDryRun        bool
)

var runCmd = &cobra.Command{
	Use:   "run <prompt>",
	Short: "Run the agent on a task",
	Long: `Run the agent loop on a single task. The prompt is sent to the model,
which works the task with a browser display, a persistent bash session,
and a text editor until it finishes or the iteration budget runs out.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runMaxIterations, "max-iterations", 0, "iteration budget for the loop")
	runCmd.Flags().IntVar(&runKeepImages, "keep-images", 0, "screenshots kept in history")
	runCmd.Flags().StringVar(&runModel, "model", "", "model to use")
	runCmd.Flags().StringVar(&runWorkdir, "workdir", "", "working directory for shell and editor")
	runCmd.Flags().StringVar(&runStartURL, "start-url", "", "page the browser opens first")
	runCmd.Flags().BoolVar(&runHeaded, "headed", false, "show the browser window")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "validate config and show the plan without running")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	prompt := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	if runDryRun {
		fmt.Printf("model:          %s\n", cfg.Anthropic.Model)
		fmt.Printf("max iterations: %d\n", cfg.Agent.MaxIterations)
		fmt.Printf("keep images:    %d\n", cfg.Agent.KeepImages)
		fmt.Printf("display:        %dx%d headless=%v\n", cfg.Display.Width, cfg.Display.Height, cfg.Display.Headless)
		fmt.Printf("workdir:        %s\n", cfg.Workdir)
		fmt.Printf("prompt:         %s\n", prompt)
		return nil
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return err
	}
	defer log.Close()
	zl := log.GetZerolog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := shell.New(shell.Config{
		Timeout: time.Duration(cfg.Shell.TimeoutSeconds) * time.Second,
		Logger:  zl,
	})
	if err != nil {
		return fmt.Errorf("failed to start shell session: %w", err)
	}

	editor, err := tools.NewEditor(cfg.Workdir)
	if err != nil {
		session.Close()
		return err
	}

	display, err := computer.NewRodDriver(computer.RodConfig{
		Width:      cfg.Display.Width,
		Height:     cfg.Display.Height,
		StartURL:   cfg.Display.StartURL,
		Headless:   cfg.Display.Headless,
		ChromePath: cfg.Display.ChromePath,
		Logger:     zl,
	})
	if err != nil {
		session.Close()
		return fmt.Errorf("failed to start display: %w", err)
	}

	dispatcher, err := tools.NewDispatcher(tools.Config{
		Shell:    session,
		Editor:   editor,
		Computer: display,
		Logger:   zl,
	})
	if err != nil {
		session.Close()
		display.Close()
		return err
	}

	p, err := provider.NewAnthropic(provider.AnthropicConfig{
		APIKey:         cfg.Anthropic.APIKey,
		Model:          cfg.Anthropic.Model,
		MaxTokens:      cfg.Anthropic.MaxTokens,
		Temperature:    cfg.Anthropic.Temperature,
		ThinkingBudget: cfg.Anthropic.ThinkingBudget,
		Logger:         zl,
	})
	if err != nil {
		dispatcher.Close()
		return err
	}

	d, err := driver.New(driver.Config{
		Provider:      p,
		Tools:         dispatcher,
		System:        cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
		KeepImages:    cfg.Agent.KeepImages,
		Logger:        zl,
	})
	if err != nil {
		dispatcher.Close()
		return err
	}

	result, err := d.Run(ctx, prompt)
	if err != nil {
		return err
	}

	if result.FinalText != "" {
		fmt.Println(result.FinalText)
	}
	fmt.Printf("\n[%s after %d iterations] %s\n", result.State, result.Iterations, result.Usage.Summary())
	return nil
}

// applyRunFlags overlays explicitly-set flags on the loaded config.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("max-iterations") {
		cfg.Agent.MaxIterations = runMaxIterations
	}
	if cmd.Flags().Changed("keep-images") {
		cfg.Agent.KeepImages = runKeepImages
	}
	if runModel != "" {
		cfg.Anthropic.Model = runModel
	}
	if runWorkdir != "" {
		cfg.Workdir = runWorkdir
	}
	if runStartURL != "" {
		cfg.Display.StartURL = runStartURL
	}
	if runHeaded {
		cfg.Display.Headless = false
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
}
