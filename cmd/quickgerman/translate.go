package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/quickgerman/internal/config"
	"github.com/1broseidon/quickgerman/internal/ipc"
	"github.com/1broseidon/quickgerman/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate <text...>",
	Short: "Translate text through the daemon, or directly when it is not running",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringP("direction", "d", "", "Translation direction: de-en or en-de (default: config translation.default_direction)")
	translateCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return translate.ErrEmptyText
	}

	raw, _ := cmd.Flags().GetString("direction")
	if raw == "" {
		raw = cfg.Translation.DefaultDirection
	}
	dir, err := translate.ParseDirection(raw)
	if err != nil {
		return err
	}

	var data *ipc.TranslateData
	client := newClient()
	if client.Ping() == nil {
		data, err = client.Translate(text, dir)
	} else {
		data, err = translateDirect(cmd.Context(), cfg, text, dir)
	}
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return printJSON(cmd, data)
	}
	if !data.OK {
		return fmt.Errorf("no translation found for %q", text)
	}
	fmt.Fprintln(cmd.OutOrStdout(), data.Result)
	return nil
}

func translateDirect(ctx context.Context, cfg *config.Config, text string, dir translate.Direction) (*ipc.TranslateData, error) {
	tr, err := translate.New(translate.Options{
		Provider:      cfg.Translation.Provider,
		Endpoint:      cfg.Translation.Endpoint,
		Timeout:       cfg.TranslationTimeout(),
		OpenAIKey:     cfg.OpenAIKey(),
		OpenAIModel:   cfg.Translation.OpenAI.Model,
		OpenAIBaseURL: cfg.Translation.OpenAI.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	result, ok, err := tr.Translate(ctx, text, dir)
	if err != nil {
		return nil, err
	}
	return &ipc.TranslateData{Text: text, Direction: string(dir), Result: result, OK: ok}, nil
}
