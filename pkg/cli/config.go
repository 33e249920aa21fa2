package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redlinehq/redline/pkg/adapter"
	"github.com/redlinehq/redline/pkg/agent/reviewer"
	"github.com/redlinehq/redline/pkg/repository"
	"github.com/redlinehq/redline/pkg/tool"
	"github.com/redlinehq/redline/pkg/tool/snippet"
	"github.com/redlinehq/redline/pkg/usecase/review"
	"github.com/redlinehq/redline/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	logLevel string

	// Repository
	project    string
	database   string
	collection string

	// Object storage
	bucket string

	// Document intake
	intakeEndpoint string
	intakeAPIKey   string

	// Gemini
	geminiProject  string
	geminiLocation string

	// Review profile
	profilePath string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("REDLINE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "collection",
			Usage:       "Firestore collection holding snippet records",
			Value:       "snippets",
			Sources:     cli.EnvVars("REDLINE_SNIPPET_COLLECTION"),
			Destination: &cfg.collection,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini (defaults to --project)",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
	}
}

// uploadFlags returns flags needed by commands that process documents
func uploadFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket for uploaded documents",
			Sources:     cli.EnvVars("REDLINE_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "intake-endpoint",
			Usage:       "Document intake (OCR) API endpoint",
			Value:       "https://api.abbyy.com/document-ai/v1-preview/models/image-to-text",
			Sources:     cli.EnvVars("REDLINE_INTAKE_ENDPOINT"),
			Destination: &cfg.intakeEndpoint,
		},
		&cli.StringFlag{
			Name:        "intake-api-key",
			Usage:       "Document intake API key",
			Sources:     cli.EnvVars("ABBYY_API_KEY"),
			Destination: &cfg.intakeAPIKey,
		},
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Path to a YAML review profile",
			Sources:     cli.EnvVars("REDLINE_PROFILE"),
			Destination: &cfg.profilePath,
		},
	}
}

// setupLogging builds the logger from config and attaches it to the context
func (cfg *config) setupLogging(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newRepository creates a new repository instance
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.New(ctx, cfg.project, cfg.database,
		repository.WithCollection(cfg.collection))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newGemini creates a new Gemini adapter instance
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	project := cfg.geminiProject
	if project == "" {
		project = cfg.project
	}
	if project == "" {
		return nil, goerr.New("gemini-project or project is required")
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	return adapter.NewGemini(ctx, project, cfg.geminiLocation)
}

// newStorage creates a new Storage adapter instance
func (cfg *config) newStorage(ctx context.Context) (adapter.Storage, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	storage, err := adapter.NewStorage(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage")
	}
	return storage, nil
}

// newIntake creates a new document intake client
func (cfg *config) newIntake() (adapter.Intake, error) {
	if cfg.intakeEndpoint == "" {
		return nil, goerr.New("intake-endpoint is required")
	}
	if cfg.intakeAPIKey == "" {
		return nil, goerr.New("intake-api-key is required")
	}

	return adapter.NewIntake(cfg.intakeEndpoint, cfg.intakeAPIKey), nil
}

// newUseCase wires the full review flow: repository, adapters, tool
// registry, and the reviewer agent
func (cfg *config) newUseCase(ctx context.Context) (*review.UseCase, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	storage, err := cfg.newStorage(ctx)
	if err != nil {
		return nil, err
	}

	intake, err := cfg.newIntake()
	if err != nil {
		return nil, err
	}

	var agentOpts []reviewer.Option
	if cfg.profilePath != "" {
		profile, err := reviewer.LoadProfile(cfg.profilePath)
		if err != nil {
			return nil, err
		}
		agentOpts = append(agentOpts, reviewer.WithProfile(profile))
	}

	registry := tool.New(snippet.NewSearch(repo, gemini))
	agent := reviewer.New(gemini, repo, registry, agentOpts...)

	return review.New(repo, gemini,
		review.WithStorage(storage),
		review.WithIntake(intake),
		review.WithReviewer(agent),
	), nil
}

// newReadOnlyUseCase wires only the snippet-store operations, used by
// commands that never touch uploads
func (cfg *config) newReadOnlyUseCase(ctx context.Context) (*review.UseCase, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	return review.New(repo, gemini), nil
}
