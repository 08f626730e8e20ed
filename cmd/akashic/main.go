// Copyright 2025 Poiesic Systems
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
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/akashic"
	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/embed"
	"github.com/poiesic/akashic/extract"
	"github.com/poiesic/akashic/stores"
)

func main() {
	app := &cli.App{
		Name:  "akashic",
		Usage: "Document ingestion into vector and graph knowledge stores",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Submit a document or raw text for ingestion",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to the document to ingest",
					},
					&cli.BoolFlag{
						Name:  "stdin",
						Usage: "Read raw text from standard input",
					},
					&cli.StringFlag{
						Name:    "target",
						Aliases: []string{"t"},
						Usage:   "Ingestion target (vector, graph, both)",
						Value:   "both",
					},
					&cli.StringFlag{
						Name:    "graph-db",
						Aliases: []string{"g"},
						Usage:   "Graph backend (neo4j, falkordb, graphiti)",
					},
					&cli.StringFlag{
						Name:  "chroma-url",
						Usage: "ChromaDB server URL",
						Value: "http://localhost:8000",
					},
					&cli.StringFlag{
						Name:  "chroma-collection",
						Usage: "ChromaDB collection name",
						Value: "akashic",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "neo4j-uri",
						Usage: "Neo4j bolt URI",
						Value: "bolt://localhost:7687",
					},
					&cli.StringFlag{
						Name:  "neo4j-user",
						Usage: "Neo4j username",
						Value: "neo4j",
					},
					&cli.StringFlag{
						Name:  "neo4j-password",
						Usage: "Neo4j password",
						Value: "password",
					},
					&cli.StringFlag{
						Name:  "falkordb-addr",
						Usage: "FalkorDB address",
						Value: "localhost:6379",
					},
					&cli.StringFlag{
						Name:  "falkordb-graph",
						Usage: "FalkorDB graph name",
						Value: "akashic",
					},
					&cli.StringFlag{
						Name:  "graphiti-url",
						Usage: "Graphiti service base URL",
						Value: "http://localhost:8080",
					},
					&cli.StringFlag{
						Name:  "tesseract-path",
						Usage: "Path to the tesseract binary for OCR fallback",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size",
						Value: 2,
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the status of a submission",
				ArgsUsage: "<submission-id>",
				Action:    statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List recent submissions, newest first",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of submissions to show",
						Value:   20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	target, err := core.ParseTarget(c.String("target"))
	if err != nil {
		return fmt.Errorf("invalid target %q: must be vector, graph, or both", c.String("target"))
	}

	graphBackend := core.GraphNone
	if c.String("graph-db") != "" {
		graphBackend, err = core.ParseGraphBackend(c.String("graph-db"))
		if err != nil {
			return fmt.Errorf("invalid graph backend %q: must be neo4j, falkordb, or graphiti", c.String("graph-db"))
		}
	}
	if target.IncludesGraph() && graphBackend == core.GraphNone {
		return fmt.Errorf("graph-db is required when target includes graph")
	}

	filename := c.String("file")
	useStdin := c.Bool("stdin")
	if filename == "" && !useStdin {
		return fmt.Errorf("either --file or --stdin is required")
	}
	if filename != "" && useStdin {
		return fmt.Errorf("--file and --stdin are mutually exclusive")
	}

	storeConfig := stores.DefaultConfig(
		stores.WithChromaURL(c.String("chroma-url")),
		stores.WithChromaCollection(c.String("chroma-collection")),
		stores.WithNeo4j(c.String("neo4j-uri"), c.String("neo4j-user"), c.String("neo4j-password")),
		stores.WithFalkor(c.String("falkordb-addr"), c.String("falkordb-graph")),
		stores.WithGraphitiURL(c.String("graphiti-url")),
	)
	embedConfig := embed.DefaultConfig(
		embed.WithHost(c.String("embedding-host")),
		embed.WithModel(c.String("embedding-model")),
	)

	// Only build the stores this submission targets
	opts := []akashic.ServiceOption{
		akashic.WithStoreConfig(storeConfig),
		akashic.WithEmbedConfig(embedConfig),
		akashic.WithRecognizer(extract.NewTesseractRecognizer(c.String("tesseract-path"))),
		akashic.WithWorkers(c.Int("workers")),
	}
	if target.IncludesVector() {
		opts = append(opts, akashic.EnableVector())
	}
	if target.IncludesGraph() {
		opts = append(opts, akashic.EnableGraph(graphBackend))
	}

	service, err := akashic.NewService(c.String("db"), opts...)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer service.Close()

	var sub *core.Submission
	if useStdin {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		sub, err = service.IngestText(ctx, string(text), target, graphBackend)
		if err != nil {
			return fmt.Errorf("failed to submit text: %w", err)
		}
	} else {
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", filename, err)
		}
		sub, err = service.IngestFile(ctx, filename, data, target, graphBackend)
		if err != nil {
			return fmt.Errorf("failed to submit %s: %w", filename, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Submission %d queued (%s)\n", sub.Id, sub.SourceName)

	final, err := pollUntilTerminal(ctx, service, sub.Id)
	if err != nil {
		return err
	}

	printSubmission(final)
	if final.Status == core.StatusFailed {
		return fmt.Errorf("ingestion failed: %s", final.ErrorDetail)
	}
	return nil
}

func pollUntilTerminal(ctx context.Context, service *akashic.Service, id core.ID) (*core.Submission, error) {
	lastProgress := -1
	for {
		sub, err := service.Status(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to query status: %w", err)
		}
		if sub.Progress != lastProgress {
			fmt.Fprintf(os.Stderr, "  %s %d%%\n", sub.Status, sub.Progress)
			lastProgress = sub.Progress
		}
		if sub.Status.Terminal() {
			return sub, nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one submission id is required")
	}
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid submission id %q", c.Args().First())
	}

	service, err := akashic.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer service.Close()

	sub, err := service.Status(ctx, core.ID(id))
	if err != nil {
		return fmt.Errorf("failed to query submission %d: %w", id, err)
	}

	printSubmission(sub)
	return nil
}

func listCommand(c *cli.Context) error {
	ctx := context.Background()

	service, err := akashic.NewService(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer service.Close()

	subs, err := service.List(ctx, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	for _, sub := range subs {
		fmt.Printf("%d\t%s\t%s\t%d%%\t%s\n",
			sub.Id, sub.SourceName, sub.Status, sub.Progress, sub.ErrorDetail)
	}
	return nil
}

func printSubmission(sub *core.Submission) {
	fmt.Printf("id:       %d\n", sub.Id)
	fmt.Printf("source:   %s\n", sub.SourceName)
	fmt.Printf("format:   %s\n", sub.Format)
	fmt.Printf("target:   %s\n", sub.Target)
	fmt.Printf("status:   %s\n", sub.Status)
	fmt.Printf("progress: %d%%\n", sub.Progress)
	if sub.ErrorDetail != "" {
		fmt.Printf("error:    %s\n", sub.ErrorDetail)
	}
}

func setupLogger(c *cli.Context) error {
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
