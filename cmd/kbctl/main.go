package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/avoronov/kbengine/internal/bootstrap"
	"github.com/avoronov/kbengine/internal/config"
	"github.com/avoronov/kbengine/internal/core/domain"
	"github.com/avoronov/kbengine/internal/observability/logging"
)

const service = "kbctl"

func main() {
	app := &cli.App{
		Name:  "kbctl",
		Usage: "Operate the knowledge base engine from the command line",
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
				Usage:  "Register a document and enqueue it for ingestion",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant the document belongs to",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the document file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Document title (defaults to the file name)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Declared document type (pdf, txt, text, doc, docx, csv)",
						Value: "txt",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Optional document description",
					},
				},
			},
			{
				Name:   "retrieve",
				Usage:  "Retrieve context for a query against a tenant's documents",
				Action: retrieveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant to query",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum chunks in the context (0 uses the configured default)",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show a document's ingestion status",
				ArgsUsage: "<document-id>",
				Action:    statusCommand,
			},
			{
				Name:   "prompt",
				Usage:  "Render the system prompt a tenant's assistant would receive",
				Action: promptCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Usage:    "Tenant to render for",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "message",
						Aliases:  []string{"m"},
						Usage:    "User message driving context retrieval",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogger(c *cli.Context) error {
	slog.SetDefault(logging.NewJSONLogger(service, c.String("log-level")))
	return nil
}

func newApp(ctx context.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, service)
}

func ingestCommand(c *cli.Context) error {
	ctx := c.Context

	documentType := strings.ToLower(strings.TrimSpace(c.String("type")))
	if !domain.IsValidDocumentType(documentType) {
		return fmt.Errorf("unsupported document type %q", documentType)
	}

	filePath := c.String("file")
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open document file: %w", err)
	}
	defer f.Close()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	tenantID := c.String("tenant")
	if _, err := app.Tenants.GetByID(ctx, tenantID); err != nil {
		return fmt.Errorf("look up tenant: %w", err)
	}

	title := c.String("title")
	if title == "" {
		title = filepath.Base(filePath)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Title:        title,
		Description:  c.String("description"),
		StoragePath:  fmt.Sprintf("documents/%s/%s", tenantID, filepath.Base(filePath)),
		DocumentType: documentType,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := app.Storage.Save(ctx, doc.StoragePath, f); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	if err := app.Docs.Create(ctx, doc); err != nil {
		return fmt.Errorf("register document: %w", err)
	}

	err = app.Queue.PublishIngestRequest(ctx, domain.IngestRequest{
		DocumentID:   doc.ID,
		StoragePath:  doc.StoragePath,
		DocumentType: doc.DocumentType,
		TenantID:     doc.TenantID,
	})
	if err != nil {
		return fmt.Errorf("enqueue ingest request: %w", err)
	}

	fmt.Printf("document %s queued for ingestion\n", doc.ID)
	return nil
}

func retrieveCommand(c *cli.Context) error {
	ctx := c.Context

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	out := app.RetrieveUC.RetrieveContext(ctx, c.String("query"), c.String("tenant"), c.Int("limit"))
	fmt.Println(out)
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := c.Context

	documentID := c.Args().First()
	if documentID == "" {
		return fmt.Errorf("usage: kbctl status <document-id>")
	}

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	doc, err := app.Docs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}

	fmt.Printf("id:      %s\n", doc.ID)
	fmt.Printf("tenant:  %s\n", doc.TenantID)
	fmt.Printf("title:   %s\n", doc.Title)
	fmt.Printf("status:  %s\n", doc.Status)
	if doc.Status.IsFailed() {
		fmt.Printf("reason:  %s\n", doc.Status.FailureReason())
	}
	return nil
}

func promptCommand(c *cli.Context) error {
	ctx := c.Context

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	prompt, err := app.PromptUC.BuildSystemPrompt(ctx, c.String("tenant"), c.String("message"))
	if err != nil {
		return err
	}
	fmt.Println(prompt)
	return nil
}
