// Copyright 2025 AvaxML
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	citeright "github.com/avaxML/cite-right"
	"github.com/avaxML/cite-right/ai"
	"github.com/avaxML/cite-right/ai/openai"
	"github.com/avaxML/cite-right/cite"
	"github.com/avaxML/cite-right/core"
	"github.com/avaxML/cite-right/reindex"
	"github.com/avaxML/cite-right/store"
	"github.com/avaxML/cite-right/store/badger"
	"github.com/avaxML/cite-right/verify"
)

func main() {
	app := &cli.App{
		Name:  "citer",
		Usage: "Character-accurate citations for AI-generated answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "align",
				Usage:  "Align an answer against reference sources and print citations",
				Action: alignCommand,
				Flags: append(append(inputFlags(), configFlags()...),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON instead of a summary",
					},
				),
			},
			{
				Name:   "annotate",
				Usage:  "Print the answer with inline citation markers",
				Action: annotateCommand,
				Flags: append(append(inputFlags(), configFlags()...),
					&cli.StringFlag{
						Name:  "style",
						Usage: "Marker style (markdown, superscript, footnote)",
						Value: "markdown",
					},
					&cli.BoolFlag{
						Name:  "no-color",
						Usage: "Disable status coloring",
					},
				),
			},
			{
				Name:   "verify",
				Usage:  "Decompose the answer into claims and verify each against the sources",
				Action: verifyCommand,
				Flags: append(append(inputFlags(), configFlags()...),
					&cli.StringFlag{
						Name:  "extractor-host",
						Usage: "Claim extraction service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "extractor-model",
						Usage:    "Chat model used for claim extraction",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "parallelism",
						Usage: "Claims verified concurrently",
						Value: verify.DefaultParallelism,
					},
				),
			},
			{
				Name:  "index",
				Usage: "Manage a stored reference corpus",
				Subcommands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add source files to the corpus",
						ArgsUsage: "FILE...",
						Action:    indexAddCommand,
						Flags:     indexFlags(),
					},
					{
						Name:   "list",
						Usage:  "List stored sources",
						Action: indexListCommand,
						Flags:  indexFlags(),
					},
					{
						Name:   "reembed",
						Usage:  "Rebuild the corpus vectors for an embedding model",
						Action: indexReembedCommand,
						Flags: append(indexFlags(),
							&cli.StringFlag{
								Name:  "embedding-host",
								Usage: "Embedding service host URL",
								Value: "http://localhost:11434/v1",
							},
							&cli.StringFlag{
								Name:     "embedding-model",
								Usage:    "Embedding model name",
								Required: true,
							},
							&cli.IntFlag{
								Name:  "batch-size",
								Usage: "Sources embedded per batch",
								Value: 100,
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Re-embed content that already has a vector",
							},
							&cli.StringFlag{
								Name:  "api-key",
								Usage: "API key for hosted embedding services",
							},
						),
					},
					{
						Name:   "clear",
						Usage:  "Remove all sources, vectors and metadata",
						Action: indexClearCommand,
						Flags:  indexFlags(),
					},
				},
			},
			{
				Name:  "config",
				Usage: "Inspect configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the effective configuration as YAML",
						Action: configShowCommand,
						Flags:  configFlags(),
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// inputFlags are shared by every command that aligns an answer.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "answer",
			Aliases: []string{"a"},
			Usage:   "Answer file, or - for stdin",
			Value:   "-",
		},
		&cli.StringSliceFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Reference source file (repeatable)",
		},
		&cli.StringFlag{
			Name:  "index",
			Usage: "Corpus directory to align against",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (enables semantic candidate selection)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "API key for hosted embedding services",
		},
	}
}

// configFlags select and override the citation configuration.
func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "preset",
			Usage: "Configuration preset (strict, permissive, fast, balanced)",
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Maximum citations per answer span",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Alignment backend (auto, reference, parallel)",
		},
	}
}

func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "index",
			Aliases:  []string{"d"},
			Usage:    "Corpus directory",
			Required: true,
		},
	}
}

// citationConfig resolves the effective core.Config: preset base, YAML file
// on top, then flag overrides.
func citationConfig(c *cli.Context) (core.Config, error) {
	cfg := core.DefaultConfig()
	if name := c.String("preset"); name != "" {
		preset, ok := core.PresetConfig(name)
		if !ok {
			return core.Config{}, fmt.Errorf("unknown preset %q", name)
		}
		cfg = preset
	}

	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return core.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return core.Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if c.IsSet("top-k") {
		cfg.TopK = c.Int("top-k")
	}
	if c.IsSet("backend") {
		cfg.Backend = core.BackendMode(c.String("backend"))
	}

	if err := cfg.Validate(); err != nil {
		return core.Config{}, err
	}
	return cfg, nil
}

func readAnswer(c *cli.Context) (string, error) {
	path := c.String("answer")
	if path == "-" || path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read answer from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return string(data), nil
}

// gatherSources loads sources from --source files and, when --index is
// given, from the stored corpus. The returned closer releases the store.
func gatherSources(ctx context.Context, c *cli.Context) ([]core.Source, func(), error) {
	closer := func() {}
	var sources []core.Source

	for _, path := range c.StringSlice("source") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, closer, fmt.Errorf("read source: %w", err)
		}
		sources = append(sources, core.Source{
			ID:   filepath.Base(path),
			Text: string(data),
		})
	}

	if dir := c.String("index"); dir != "" {
		corpus, err := badger.Open(dir)
		if err != nil {
			return nil, closer, fmt.Errorf("open corpus: %w", err)
		}
		closer = func() { corpus.Close() }
		stored, err := corpus.ListSources(ctx)
		if err != nil {
			closer()
			return nil, func() {}, fmt.Errorf("list corpus sources: %w", err)
		}
		sources = append(sources, stored...)
	}

	if len(sources) == 0 {
		closer()
		return nil, func() {}, fmt.Errorf("no sources: pass --source or --index")
	}
	return sources, closer, nil
}

// alignerOptions builds the cite options for one run, wiring an embedder
// when the embedding flags are present.
func alignerOptions(c *cli.Context, cfg core.Config) ([]cite.Option, error) {
	opts := []cite.Option{cite.WithConfig(cfg)}

	if c.String("embedding-model") != "" {
		host := c.String("embedding-host")
		if host == "" {
			host = "http://localhost:11434/v1"
		}
		aiConfig := ai.NewConfig(
			ai.WithHost(host),
			ai.WithEmbeddingModel(c.String("embedding-model")),
			ai.WithExtractorModel("unused"),
			ai.WithAPIKey(c.String("api-key")),
		)
		embedder, err := openai.NewEmbedder(aiConfig)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
		opts = append(opts, cite.WithEmbedder(embedder))
	}
	return opts, nil
}

func runAlignment(c *cli.Context) (string, []core.SpanResult, error) {
	ctx := c.Context

	cfg, err := citationConfig(c)
	if err != nil {
		return "", nil, err
	}
	answer, err := readAnswer(c)
	if err != nil {
		return "", nil, err
	}
	sources, closeSources, err := gatherSources(ctx, c)
	if err != nil {
		return "", nil, err
	}
	defer closeSources()

	opts, err := alignerOptions(c, cfg)
	if err != nil {
		return "", nil, err
	}
	results, err := citeright.Align(ctx, answer, sources, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("alignment failed: %w", err)
	}
	return answer, results, nil
}

func alignCommand(c *cli.Context) error {
	_, results, err := runAlignment(c)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}

	fmt.Println(citeright.CitationSummary(results))
	return nil
}

func annotateCommand(c *cli.Context) error {
	style := citeright.AnnotationStyle(c.String("style"))
	switch style {
	case citeright.StyleMarkdown, citeright.StyleSuperscript, citeright.StyleFootnote:
	default:
		return fmt.Errorf("unknown style %q", c.String("style"))
	}

	answer, results, err := runAlignment(c)
	if err != nil {
		return err
	}

	if c.Bool("no-color") || color.NoColor {
		fmt.Println(citeright.AnnotateAnswer(answer, results, style))
		return nil
	}
	fmt.Println(annotateColored(answer, results))
	return nil
}

var statusColors = map[core.Status]*color.Color{
	core.StatusSupported:   color.New(color.FgGreen),
	core.StatusPartial:     color.New(color.FgYellow),
	core.StatusUnsupported: color.New(color.FgRed),
}

// annotateColored renders the answer with each span's text wrapped in its
// status color. Markers are plain markdown-style numbers regardless of the
// requested style: ANSI escapes inside superscripts or footnote anchors
// render poorly, so color implies the simple marker form.
func annotateColored(answer string, results []core.SpanResult) string {
	numbers := make(map[string]int)
	var b strings.Builder
	cursor := 0
	for _, result := range results {
		span := result.AnswerSpan
		if span.CharEnd > len(answer) || span.CharStart < cursor {
			continue
		}
		b.WriteString(answer[cursor:span.CharStart])
		b.WriteString(statusColors[result.Status].Sprint(answer[span.CharStart:span.CharEnd]))
		cursor = span.CharEnd

		seen := make(map[int]bool)
		marked := false
		for _, citation := range result.Citations {
			number, ok := numbers[citation.SourceID]
			if !ok {
				number = len(numbers) + 1
				numbers[citation.SourceID] = number
			}
			if seen[number] {
				continue
			}
			seen[number] = true
			fmt.Fprintf(&b, "[%d]", number)
			marked = true
		}
		if !marked {
			b.WriteString("[?]")
		}
	}
	b.WriteString(answer[cursor:])
	return b.String()
}

func verifyCommand(c *cli.Context) error {
	ctx := c.Context

	cfg, err := citationConfig(c)
	if err != nil {
		return err
	}
	answer, err := readAnswer(c)
	if err != nil {
		return err
	}
	sources, closeSources, err := gatherSources(ctx, c)
	if err != nil {
		return err
	}
	defer closeSources()

	aiConfig := ai.NewConfig(
		ai.WithExtractorHost(c.String("extractor-host")),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithEmbeddingHost(c.String("extractor-host")),
		ai.WithEmbeddingModel("unused"),
		ai.WithAPIKey(c.String("api-key")),
	)
	extractor, err := openai.NewClaimExtractor(aiConfig)
	if err != nil {
		return fmt.Errorf("create claim extractor: %w", err)
	}

	opts, err := alignerOptions(c, cfg)
	if err != nil {
		return err
	}
	aligner, err := cite.New(opts...)
	if err != nil {
		return err
	}
	defer aligner.Release()

	verifier, err := verify.New(extractor, aligner, verify.WithParallelism(c.Int("parallelism")))
	if err != nil {
		return err
	}
	report, err := verifier.Verify(ctx, answer, sources)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Printf("%d claims, %.0f%% supported\n", len(report.Claims), report.SupportedRatio*100)
	for _, claim := range report.Claims {
		line := fmt.Sprintf("[%s] %s", claim.Status, claim.Claim.Text)
		if cc, ok := statusColors[claim.Status]; ok && !color.NoColor {
			line = cc.Sprint(line)
		}
		fmt.Println(line)
	}
	return nil
}

func indexAddCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("no files to add")
	}

	corpus, err := badger.Open(c.String("index"))
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer corpus.Close()

	var sources []core.Source
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		sources = append(sources, core.Source{
			ID:   filepath.Base(path),
			Text: string(data),
		})
	}
	if err := corpus.PutSources(c.Context, sources...); err != nil {
		return fmt.Errorf("store sources: %w", err)
	}

	fmt.Printf("Added %d sources\n", len(sources))
	return nil
}

func indexListCommand(c *cli.Context) error {
	corpus, err := badger.Open(c.String("index"))
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer corpus.Close()

	count := 0
	err = corpus.ForEachSource(c.Context, func(source core.Source) error {
		fmt.Printf("%s\t%d chars\n", source.EffectiveID(), len(source.Text))
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("list sources: %w", err)
	}
	fmt.Printf("%d sources\n", count)
	return nil
}

func indexReembedCommand(c *cli.Context) error {
	corpus, err := badger.Open(c.String("index"))
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer corpus.Close()

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorModel("unused"),
		ai.WithAPIKey(c.String("api-key")),
	)
	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	config := reindex.DefaultConfig()
	config.Model = c.String("embedding-model")
	config.BatchSize = c.Int("batch-size")
	config.Force = c.Bool("force")

	progress := reindex.NewConsoleProgress(os.Stderr, config.BatchSize)
	report, err := reindex.New(corpus, embedder, config, progress).Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	if err := corpus.SaveMeta(c.Context, &store.Meta{EmbeddingModel: config.Model}); err != nil {
		return fmt.Errorf("save corpus metadata: %w", err)
	}
	fmt.Printf("Embedded %d, skipped %d, failed %d in %s\n",
		report.Embedded, report.Skipped, report.Failed, report.Elapsed.Round(time.Millisecond))
	return nil
}

func indexClearCommand(c *cli.Context) error {
	corpus, err := badger.Open(c.String("index"))
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer corpus.Close()

	if err := corpus.Clear(c.Context); err != nil {
		return fmt.Errorf("clear corpus: %w", err)
	}
	fmt.Println("Corpus cleared")
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := citationConfig(c)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func setup(c *cli.Context) error {
	// Missing .env files are fine; explicit ones are loaded for API keys.
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}
