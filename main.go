package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Model selection
	modelNames   []string
	modelGroup   string
	systemPrompt string
	maxTokens    int
	temperature  float64

	// Context gathering
	contextPaths  []string
	noIgnore      bool
	traverseLinks bool
	linkDepth     int

	// Token counting
	disableTokens  bool
	tokenizerType  string
	tokenizerModel string
	tokenizerFile  string

	// Output
	outputFile      string
	copyToClipboard bool
	pdfOutputFile   string

	requestTimeout time.Duration
	debugMode      bool
	cfgFile        string
)

// version is set via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "parley [flags] PROMPT...",
	Short: "Parley sends a prompt, with optional file context, to one or more LLM providers.",
	Long: `Parley assembles a prompt from your arguments plus optional context
(files, directories, web URLs, git repositories), sends it to one or more
configured LLM providers (OpenAI, Anthropic, Google, OpenRouter), and
writes the responses to stdout, a file, the clipboard, or a PDF.`,
	Version:       version,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := setupLogging(debugMode); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	models, err := cfg.ResolveModels(modelNames, modelGroup)
	if err != nil {
		return err
	}

	system := ""
	if systemPrompt != "" {
		system = cfg.ResolveSystemPrompt(systemPrompt)
	}

	prompt := strings.Join(args, " ")

	outcomes, cleanup, err := gatherContext(contextPaths)
	defer cleanup()
	if err != nil {
		return err
	}

	included := 0
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping %s (%s): %s\n", o.Path, o.Err.Code, o.Err.Message)
			continue
		}
		included++
	}

	fullPrompt := assemblePrompt(prompt, buildContextDocument(outcomes))

	if !disableTokens {
		tk, err := newTokenizer(tokenizerType, tokenizerModel, tokenizerFile)
		if err != nil {
			logger.Warn("token counting disabled", zap.Error(err))
		} else {
			defer tk.Close()
			fmt.Fprintf(os.Stderr, "Context files: %d, prompt tokens: %d\n",
				included, tk.CountTokens(fullPrompt))
		}
	}

	ctx := context.Background()
	if requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, requestTimeout)
		defer cancel()
	}

	responses := make([]ModelResponse, len(models))
	var wg sync.WaitGroup
	for i, sm := range models {
		wg.Add(1)
		go func(i int, sm SelectedModel) {
			defer wg.Done()
			responses[i] = completeModel(ctx, sm, CompletionRequest{
				System:      system,
				Prompt:      fullPrompt,
				MaxTokens:   pickMaxTokens(sm.Config),
				Temperature: pickTemperature(sm.Config),
			})
		}(i, sm)
	}
	wg.Wait()

	failed := 0
	for _, resp := range responses {
		if resp.Err != nil {
			failed++
			logger.Warn("model request failed", zap.String("model", resp.Name), zap.Error(resp.Err))
		}
	}
	if failed == len(responses) {
		return &cliError{code: exitProvider, msg: "all model requests failed", cause: responses[0].Err}
	}

	if pdfOutputFile != "" {
		return writeResponsesPDF(responses, prompt, pdfOutputFile)
	}
	return deliverOutput(formatResponses(responses))
}

// gatherContext dispatches each context value by shape: web URLs are
// fetched, git URLs are cloned and walked, everything else goes through
// the path resolver. The returned cleanup removes any clone temp dirs.
func gatherContext(paths []string) ([]FileOutcome, func(), error) {
	reader := NewContextReader(afero.NewOsFs(), logger)
	reader.SetNoIgnore(noIgnore)

	var tempDirs []string
	cleanup := func() {
		for _, dir := range tempDirs {
			_ = os.RemoveAll(dir)
		}
	}

	var localPaths []string
	var outcomes []FileOutcome
	for _, cp := range paths {
		switch {
		case isWebURL(cp):
			depth := 0
			if traverseLinks {
				depth = linkDepth
			}
			outcomes = append(outcomes, fetchWebContext(cp, depth)...)
		case isGitURL(cp):
			tempDir, err := cloneRepo(cp)
			if err != nil {
				outcomes = append(outcomes, failedOutcome(cp, ErrCodeProcessing, "clone failed: %v", err))
				continue
			}
			tempDirs = append(tempDirs, tempDir)
			for _, o := range reader.WalkDirectory(tempDir) {
				// Show repo-relative paths, not temp-dir internals.
				o.Path = cp + "/" + normalizeForMatching(o.Path, tempDir)
				outcomes = append(outcomes, o)
			}
		default:
			localPaths = append(localPaths, cp)
		}
	}
	outcomes = append(outcomes, reader.ResolvePaths(localPaths)...)
	return outcomes, cleanup, nil
}

func completeModel(ctx context.Context, sm SelectedModel, req CompletionRequest) ModelResponse {
	resp := ModelResponse{Name: sm.Name, Provider: sm.Config.Provider, Model: sm.Config.Model}

	provider, err := newProvider(sm.Config)
	if err != nil {
		resp.Err = err
		return resp
	}

	start := time.Now()
	content, err := provider.Complete(ctx, sm.Config.Model, req)
	resp.Elapsed = time.Since(start)
	if err != nil {
		resp.Err = err
		return resp
	}
	resp.Content = content
	return resp
}

func pickMaxTokens(mc ModelConfig) int {
	if maxTokens > 0 {
		return maxTokens
	}
	if mc.MaxTokens > 0 {
		return mc.MaxTokens
	}
	return defaultMaxTokens
}

func pickTemperature(mc ModelConfig) float64 {
	if temperature > 0 {
		return temperature
	}
	return mc.Temperature
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/parley/config.toml)")

	// Model selection
	rootCmd.Flags().StringSliceVarP(&modelNames, "model", "m", nil, "Model to query: a config entry or provider/model-id (repeatable)")
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	rootCmd.Flags().StringVarP(&modelGroup, "group", "g", "", "Provider group from config to fan out over")
	viper.BindPFlag("group", rootCmd.Flags().Lookup("group"))
	rootCmd.Flags().StringVarP(&systemPrompt, "system", "s", "", "System prompt: a named config prompt or literal text")
	viper.BindPFlag("system", rootCmd.Flags().Lookup("system"))
	rootCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum response tokens (0 uses the model config)")
	viper.BindPFlag("max_tokens", rootCmd.Flags().Lookup("max-tokens"))
	rootCmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature (0 uses the model config)")
	viper.BindPFlag("temperature", rootCmd.Flags().Lookup("temperature"))

	// Context gathering
	rootCmd.Flags().StringSliceVarP(&contextPaths, "context", "x", nil, "Context source: file, directory, URL, or git repo (repeatable)")
	viper.BindPFlag("context", rootCmd.Flags().Lookup("context"))
	rootCmd.Flags().BoolVar(&noIgnore, "no-ignore", false, "Don't respect .gitignore files when collecting context")
	viper.BindPFlag("no_ignore", rootCmd.Flags().Lookup("no-ignore"))
	rootCmd.Flags().BoolVar(&traverseLinks, "traverse-links", false, "Follow links when processing URL context")
	viper.BindPFlag("traverse_links", rootCmd.Flags().Lookup("traverse-links"))
	rootCmd.Flags().IntVar(&linkDepth, "link-depth", 1, "Maximum depth when following links")
	viper.BindPFlag("link_depth", rootCmd.Flags().Lookup("link-depth"))

	// Token counting
	rootCmd.Flags().BoolVar(&disableTokens, "no-tokens", false, "Disable token counting")
	viper.BindPFlag("no_tokens", rootCmd.Flags().Lookup("no-tokens"))
	rootCmd.Flags().StringVar(&tokenizerType, "tokenizer", "tiktoken", "Tokenizer to use: tiktoken or huggingface")
	viper.BindPFlag("tokenizer", rootCmd.Flags().Lookup("tokenizer"))
	rootCmd.Flags().StringVar(&tokenizerModel, "tokenizer-model", "", "Model name for the tokenizer")
	viper.BindPFlag("tokenizer_model", rootCmd.Flags().Lookup("tokenizer-model"))
	rootCmd.Flags().StringVar(&tokenizerFile, "tokenizer-file", "", "Path to a local tokenizer file")
	viper.BindPFlag("tokenizer_file", rootCmd.Flags().Lookup("tokenizer-file"))

	// Output
	rootCmd.Flags().StringVarP(&outputFile, "file", "f", "", "Save output to the given file")
	viper.BindPFlag("file", rootCmd.Flags().Lookup("file"))
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy output to the clipboard")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Save output as PDF")
	viper.BindPFlag("pdf", rootCmd.Flags().Lookup("pdf"))

	rootCmd.Flags().DurationVar(&requestTimeout, "timeout", 2*time.Minute, "Timeout for provider requests")
	viper.BindPFlag("timeout", rootCmd.Flags().Lookup("timeout"))
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	viper.SetDefault("default_model", "")
	viper.SetDefault("tokenizer", "tiktoken")
	viper.SetDefault("link_depth", 1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := exitFailure
		var exitErr *cliError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		os.Exit(code)
	}
}
