package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/askline/askline/internal/app"
	"github.com/askline/askline/internal/config"
	"github.com/askline/askline/internal/coordinator"
	"github.com/askline/askline/internal/events"
	"github.com/askline/askline/internal/transport"
)

const version = "0.3.0"

// fatalf indirection allows testing fatal paths without exiting the test process.
var fatalf = log.Fatalf

var (
	flagEndpoint  string
	flagModel     string
	flagAPIKey    string
	flagSystem    string
	flagProfile   string
	flagTransport string
	flagTimeout   time.Duration
	flagPort      string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "askline",
		Short:         "Send a prompt to an Ollama or Gemini endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "inference endpoint URL (overrides env)")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "model name (overrides env)")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "API key for chat-style endpoints")
	root.PersistentFlags().StringVar(&flagSystem, "system", "", "system prompt prepended to every query")
	root.PersistentFlags().StringVar(&flagProfile, "profile", "", "named profile from the profiles file")
	root.PersistentFlags().StringVar(&flagTransport, "transport", "", "transport: curl or http")

	root.AddCommand(newAskCmd(), newServeCmd(), newVersionCmd())
	return root
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "One-shot query: print the model's answer and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := ""
			for i, a := range args {
				if i > 0 {
					prompt += " "
				}
				prompt += a
			}
			return runAsk(cmd.Context(), prompt)
		},
	}
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "give up after this long")
	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP host surface (/ask, /result, /cancel)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.SetHTTPPort(flagPort)
			a, err := app.NewWithOptions(app.Options{Profile: flagProfile})
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flagPort, "port", "", "HTTP port to listen on")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the askline version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("askline", version)
		},
	}
}

// resolveConfig merges env, profile and CLI flags, flags winning.
func resolveConfig() (*config.EnvVars, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	if flagEndpoint != "" {
		env.Endpoint = flagEndpoint
	}
	if flagModel != "" {
		env.Model = flagModel
	}
	if flagAPIKey != "" {
		env.APIKey = flagAPIKey
	}
	if flagSystem != "" {
		env.SystemPrompt = flagSystem
	}
	if flagTransport != "" {
		env.Transport = flagTransport
	}
	return env, nil
}

func runAsk(ctx context.Context, prompt string) error {
	env, err := resolveConfig()
	if err != nil {
		return err
	}
	cfg, err := config.Resolve(env, flagProfile)
	if err != nil {
		return err
	}

	var tr transport.Transport
	switch env.Transport {
	case "", "curl":
		tr = transport.NewCurlTransport()
	case "http":
		tr = transport.NewHTTPTransport()
	default:
		return fmt.Errorf("unknown transport %q", env.Transport)
	}

	done := make(chan events.Event, 1)
	sink := sinkFunc(func(ev events.Event) {
		if ev.Kind != events.Loading {
			done <- ev
		}
	})

	coord, err := coordinator.New(cfg, tr, sink)
	if err != nil {
		return err
	}

	if _, err := coord.Submit(ctx, prompt); err != nil {
		return err
	}

	select {
	case ev := <-done:
		if ev.Kind == events.Failure {
			color.New(color.FgRed).Fprintln(os.Stderr, ev.Text)
			return fmt.Errorf("request failed")
		}
		color.New(color.FgGreen).Println(ev.Text)
		return nil
	case <-time.After(flagTimeout):
		coord.Cancel()
		return fmt.Errorf("timed out after %v", flagTimeout)
	case <-ctx.Done():
		coord.Cancel()
		return ctx.Err()
	}
}

type sinkFunc func(events.Event)

func (f sinkFunc) Publish(ev events.Event) { f(ev) }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fatalf("askline: %v", err)
	}
}
