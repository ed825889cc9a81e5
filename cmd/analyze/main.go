package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spacesedan/feedbackflow/config"
	"github.com/spacesedan/feedbackflow/internal/analysis"
	"github.com/spacesedan/feedbackflow/internal/clients"
	"github.com/spacesedan/feedbackflow/internal/logging"
	"github.com/spacesedan/feedbackflow/internal/models"
	"github.com/spacesedan/feedbackflow/internal/notify"
	"github.com/spacesedan/feedbackflow/internal/sentiment"
	"github.com/spacesedan/feedbackflow/internal/shell"
	"github.com/spacesedan/feedbackflow/internal/suggestions"
)

const chartWidth = 40

type cliConfig struct {
	InPath  string
	Suggest bool
	Env     string
}

func parseFlags(fs *flag.FlagSet, args []string) (cliConfig, error) {
	var cfg cliConfig
	fs.StringVar(&cfg.InPath, "in", "", "CSV file with a 'feedback' column")
	fs.BoolVar(&cfg.Suggest, "suggest", false, "generate suggestions and post them to the webhook")
	fs.StringVar(&cfg.Env, "env", config.AppEnv(), "environment name used to pick config/envs/.env.<env>")
	if err := fs.Parse(args); err != nil {
		return cliConfig{}, err
	}
	if cfg.InPath == "" {
		return cliConfig{}, errors.New("-in is required")
	}
	return cfg, nil
}

func main() {
	logging.InitLogger(os.Getenv(config.ENV_LOG_LEVEL))

	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	cli, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	cfg, err := config.Load(cli.Env)
	if err != nil {
		slog.Error("[Analyze] Configuration incomplete", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level)

	if err := run(context.Background(), cli, cfg, os.Stdout); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cli cliConfig, cfg *config.Config, out io.Writer) error {
	session := shell.NewSession(
		analysis.NewAnalyzer(sentiment.NewClassifier()),
		suggestions.NewGenerator(clients.NewOpenAIClient(cfg)),
		notify.NewNotifier(cfg.WebhookURL, cfg.Notify.Header),
	)
	return runSession(ctx, session, cli, out)
}

func runSession(ctx context.Context, session *shell.Session, cli cliConfig, out io.Writer) error {
	f, err := os.Open(cli.InPath)
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}
	defer f.Close()

	if err := session.Upload(f.Name(), f); err != nil {
		printNotices(out, session.View())
		return err
	}
	v := session.View()
	printNotices(out, v)
	printAnalysis(out, *v.Analysis)

	if !cli.Suggest {
		return nil
	}

	err = session.Generate(ctx, v.UploadID)
	v = session.View()
	if v.Suggestions != "" {
		fmt.Fprintf(out, "\n📌 Suggestions\n%s\n\n", v.Suggestions)
	}
	printNotices(out, v)
	return err
}

func printNotices(out io.Writer, v shell.View) {
	for _, n := range v.Notices {
		icon := "✅"
		if n.Kind == shell.NoticeError {
			icon = "❌"
		}
		fmt.Fprintf(out, "%s %s\n", icon, n.Message)
	}
}

func printAnalysis(out io.Writer, a models.Analysis) {
	fmt.Fprintf(out, "\n📊 Sentiment Analysis (%d rows)\n", a.Total())
	top := 0
	for _, lc := range a.Distribution {
		top = max(top, lc.Count)
	}
	for _, lc := range a.Distribution {
		width := 0
		if top > 0 {
			width = lc.Count * chartWidth / top
		}
		fmt.Fprintf(out, "  %-9s %s %d\n", lc.Label, strings.Repeat("█", width), lc.Count)
	}

	fmt.Fprintln(out, "\n🔑 Top Keywords")
	for _, kc := range a.Keywords {
		fmt.Fprintf(out, "  - %s: %d times\n", kc.Word, kc.Count)
	}
}
