package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/schedwise/internal/observability"
	"github.com/hrygo/schedwise/internal/profile"
	"github.com/hrygo/schedwise/plugin/ai"
	"github.com/hrygo/schedwise/server/assistant"
	"github.com/hrygo/schedwise/server/conversation"
	"github.com/hrygo/schedwise/server/export"
	"github.com/hrygo/schedwise/server/timezone"
	"github.com/hrygo/schedwise/store"
	"github.com/hrygo/schedwise/store/db"
)

const version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:     "schedwise",
	Short:   "Conversational schedule assistant",
	Version: version,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runChat(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all events as an iCalendar document to stdout",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExport(cmd.Context())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored conversation for the current session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		summary, err := cmd.Flags().GetBool("summary")
		if err != nil {
			return err
		}
		return runHistory(cmd.Context(), summary)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored conversation for the current session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runHistoryClear(cmd.Context())
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of the assistant ("prod" or "dev")`)
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", `database driver ("sqlite" or "postgres")`)
	flags.String("dsn", "", "database source name")
	flags.String("timezone", "UTC", "IANA timezone for interpreting times")
	flags.String("session", "default", "conversation session name")
	flags.Bool("verbose", false, "enable debug logging")
	flags.String("llm-base-url", "", "OpenAI-compatible API base URL")
	flags.String("llm-api-key", "", "LLM API key")
	flags.String("llm-model", "", "LLM model name")

	for flag, key := range map[string]string{
		"mode":         "mode",
		"data":         "data",
		"driver":       "driver",
		"dsn":          "dsn",
		"timezone":     "timezone",
		"session":      "session",
		"verbose":      "verbose",
		"llm-base-url": "llm.base-url",
		"llm-api-key":  "llm.api-key",
		"llm-model":    "llm.model",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("schedwise")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	historyCmd.Flags().Bool("summary", false, "print turn counts and a recent preview instead of every turn")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(exportCmd, historyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup builds the shared runtime pieces every subcommand needs.
func setup(ctx context.Context) (*profile.Profile, *store.Store, *slog.Logger, error) {
	p, err := profile.FromViper(viper.GetViper())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, nil, nil, err
	}
	p.Version = version

	logger := observability.Setup(p.Verbose)

	driver, err := db.NewDriver(ctx, p)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return p, store.New(driver, p), logger, nil
}

func runChat(ctx context.Context) error {
	p, st, logger, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	zone, err := timezone.Parse(p.Timezone)
	if err != nil {
		return err
	}

	provider := ai.NewProvider(ai.Config{
		BaseURL:    p.LLMBaseURL,
		APIKey:     p.LLMAPIKey,
		Model:      p.LLMModel,
		MaxRetries: p.LLMMaxRetries,
		Timeout:    time.Duration(p.LLMTimeoutSec) * time.Second,
	}, logger)
	if err := provider.Validate(ctx); err != nil {
		return err
	}

	scheduler := assistant.NewScheduler(ai.NewInterpreter(provider, logger), st, assistant.SchedulerConfig{
		Zone:           zone,
		Session:        p.Session,
		Store:          st,
		BackendTimeout: time.Duration(p.BackendTimeoutSec) * time.Second,
		Logger:         logger,
		Verbose:        p.Verbose,
	})
	if err := scheduler.LoadHistory(ctx); err != nil {
		return fmt.Errorf("failed to load conversation history: %w", err)
	}

	fmt.Printf("schedwise %s (session %q, timezone %s). Type your request, \"clear\" to reset the conversation, or \"exit\" to quit.\n", version, p.Session, p.Timezone)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if line == "clear" {
			if err := scheduler.ClearHistory(ctx); err != nil {
				fmt.Printf("failed to clear history: %v\n", err)
				continue
			}
			fmt.Println("Conversation cleared.")
			continue
		}
		if ctx.Err() != nil {
			break
		}
		result := scheduler.HandleTurn(ctx, line)
		fmt.Println(result.Reply)
	}
	return scanner.Err()
}

func runExport(ctx context.Context) error {
	_, st, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.ListEvents(ctx, &store.FindEvent{})
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	fmt.Print(export.ToICS(events))
	return nil
}

func runHistory(ctx context.Context, summary bool) error {
	p, st, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	turns, err := st.ListConversationTurns(ctx, &store.FindConversationTurn{SessionID: p.Session})
	if err != nil {
		return fmt.Errorf("failed to list conversation turns: %w", err)
	}
	if len(turns) == 0 {
		fmt.Printf("No stored turns for session %q.\n", p.Session)
		return nil
	}

	if summary {
		history := conversation.New()
		restored := make([]conversation.Turn, 0, len(turns))
		for _, turn := range turns {
			restored = append(restored, conversation.Turn{
				ID:             turn.ID,
				Role:           conversation.Role(turn.Role),
				Content:        turn.Content,
				RelatedEventID: turn.RelatedEventID,
				Timestamp:      time.Unix(turn.CreatedTs, 0).UTC(),
			})
		}
		history.Restore(restored)
		s := history.Summary()
		fmt.Printf("Session %q: %d turn(s) (%d user, %d assistant, %d system).\n",
			p.Session, s.TotalTurns, s.UserTurns, s.AssistantTurns, s.SystemTurns)
		if preview := history.ContextString(len(s.RecentPreview)); preview != "" {
			fmt.Println("Recent:")
			fmt.Println(preview)
		}
		return nil
	}

	for _, turn := range turns {
		ts := time.Unix(turn.CreatedTs, 0).UTC().Format(time.RFC3339)
		fmt.Printf("[%s] %s: %s\n", ts, strings.ToLower(string(turn.Role)), turn.Content)
	}
	return nil
}

func runHistoryClear(ctx context.Context) error {
	p, st, _, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteConversationTurns(ctx, &store.DeleteConversationTurns{SessionID: p.Session}); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	fmt.Printf("Cleared session %q.\n", p.Session)
	return nil
}
