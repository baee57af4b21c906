// Copyright 2026 Poiesic Systems
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
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/corpit"
	"github.com/poiesic/corpit/ai"
	"github.com/poiesic/corpit/core"
	"github.com/poiesic/corpit/reindex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "corpit",
		Usage: "Knowledge file ingestion and semantic search",
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
				Name:  "kb",
				Usage: "Manage knowledge bases",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a new knowledge base",
						Action: kbCreateCommand,
						Flags: append(dataFlags(),
							&cli.StringFlag{
								Name:     "name",
								Aliases:  []string{"n"},
								Usage:    "Knowledge base name",
								Required: true,
							},
							&cli.StringFlag{
								Name:  "description",
								Usage: "Knowledge base description",
							},
							&cli.StringFlag{
								Name:  "owner",
								Usage: "Owner identifier",
							},
							&cli.StringFlag{
								Name:  "type",
								Usage: "Free-form knowledge type tag",
							},
							&cli.BoolFlag{
								Name:  "public",
								Usage: "Make the knowledge base publicly readable",
							},
							&cli.IntFlag{
								Name:  "chunk-size",
								Usage: "Target chunk size in characters",
								Value: 500,
							},
							&cli.IntFlag{
								Name:  "chunk-overlap",
								Usage: "Overlap between consecutive chunks in characters",
								Value: 50,
							},
						),
					},
					{
						Name:   "list",
						Usage:  "List all knowledge bases",
						Action: kbListCommand,
						Flags:  dataFlags(),
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Ingest files into a knowledge base and wait for processing",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: append(dataFlags(),
					&cli.Uint64Flag{
						Name:     "kb",
						Usage:    "Target knowledge base ID",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Maximum time to wait for each file to finish processing",
						Value: 10 * time.Minute,
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show processing status for the files of a knowledge base",
				Action: statusCommand,
				Flags: append(dataFlags(),
					&cli.Uint64Flag{
						Name:     "kb",
						Usage:    "Knowledge base ID",
						Required: true,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search indexed chunks by semantic similarity",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(dataFlags(),
					&cli.Uint64Flag{
						Name:  "kb",
						Usage: "Restrict results to one knowledge base (0 searches everything)",
					},
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results to return",
						Value: 5,
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all stored chunks with the configured embedding model",
				Action: reindexCommand,
				Flags: append(dataFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// dataFlags returns the flags every subcommand shares: the data directory
// and the embedding service coordinates.
func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Path to the data directory",
			Required: true,
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
	}
}

func openDatabase(c *cli.Context) (*corpit.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := corpit.NewDatabase(c.String("data"), corpit.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func kbCreateCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	kb := &core.KnowledgeBase{
		Name:          c.String("name"),
		Description:   c.String("description"),
		Owner:         c.String("owner"),
		Public:        c.Bool("public"),
		KnowledgeType: c.String("type"),
		ChunkSize:     c.Int("chunk-size"),
		ChunkOverlap:  c.Int("chunk-overlap"),
	}
	if err := core.ValidateKnowledgeBase(kb); err != nil {
		return err
	}

	added, err := db.KnowledgeBaseRepository().AddKnowledgeBases(c.Context, kb)
	if err != nil {
		return fmt.Errorf("failed to create knowledge base: %w", err)
	}

	fmt.Printf("Created knowledge base %d: %s\n", added[0].Id, added[0].Name)
	return nil
}

func kbListCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	bases, err := db.KnowledgeBaseRepository().ListKnowledgeBases(c.Context)
	if err != nil {
		return fmt.Errorf("failed to list knowledge bases: %w", err)
	}

	if len(bases) == 0 {
		fmt.Println("No knowledge bases")
		return nil
	}
	for _, kb := range bases {
		fmt.Printf("%d: %s (%d files, %d bytes, chunk %d/%d)\n",
			kb.Id, kb.Name, kb.FileCount, kb.TotalSize, kb.ChunkSize, kb.ChunkOverlap)
	}
	return nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file argument is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	monitor, err := db.NewMonitor()
	if err != nil {
		return err
	}
	pipeline, err := db.NewIngestionPipeline(monitor)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	kbID := core.ID(c.Uint64("kb"))
	timeout := c.Duration("timeout")

	failures := 0
	for _, arg := range c.Args().Slice() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", arg, err)
		}

		file, err := pipeline.Ingest(c.Context, kbID, filepath.Base(arg), data)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", arg, err)
		}

		file, err = waitForFile(c.Context, db, file.Id, timeout)
		if err != nil {
			return err
		}

		switch file.Status {
		case core.StatusCompleted:
			fmt.Printf("%s: completed (%d chunks)\n", file.Name, file.ChunkCount)
		case core.StatusFailed:
			failures++
			fmt.Printf("%s: failed: %s\n", file.Name, file.Error)
		default:
			failures++
			fmt.Printf("%s: timed out in status %s\n", file.Name, file.Status)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d files did not complete", failures, c.NArg())
	}
	return nil
}

// waitForFile polls the persisted record until the file reaches a terminal
// status or the timeout elapses. The last observed record is returned either
// way so the caller can report the state it ended in.
func waitForFile(ctx context.Context, db *corpit.Database, fileID core.ID, timeout time.Duration) (*core.KnowledgeFile, error) {
	deadline := time.Now().Add(timeout)
	for {
		file, err := db.FileRepository().GetFile(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %d: %w", fileID, err)
		}
		if file.Status.Terminal() || time.Now().After(deadline) {
			return file, nil
		}
		select {
		case <-ctx.Done():
			return file, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func statusCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	kbID := core.ID(c.Uint64("kb"))
	files, err := db.FileRepository().ListFilesByKnowledgeBase(c.Context, kbID)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		fmt.Println("No files")
		return nil
	}
	for _, file := range files {
		line := fmt.Sprintf("%d: %s [%s] %d chunks", file.Id, file.Name, file.Status, file.ChunkCount)
		if file.Error != "" {
			line += " - " + file.Error
		}
		fmt.Println(line)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	query := strings.Join(c.Args().Slice(), " ")
	maxHits := c.Int("max-hits")
	kbID := core.ID(c.Uint64("kb"))

	var matches []*core.ChunkMatch
	if kbID != 0 {
		matches, err = searcher.FindSimilarInKnowledgeBase(c.Context, query, kbID, maxHits)
	} else {
		matches, err = searcher.FindSimilar(c.Context, query, maxHits)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(matches))
	for i, hit := range matches {
		fmt.Printf("%d: %s#%d [%0.3f]\n%s\n", i, hit.Chunk.FileName, hit.Chunk.Index, hit.Score, hit.Chunk.Content)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Data directory: %s\n", c.String("data"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	reindexer := db.NewReindexer(config, os.Stderr)
	if err := reindexer.Run(c.Context); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
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
