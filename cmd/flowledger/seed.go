package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"flowledger/internal/config"
	"flowledger/internal/logging"
	"flowledger/internal/repository"
	"flowledger/internal/services"
	"flowledger/pkg/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a demo workflow and version history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seed(cmd.Context())
	},
}

func seed(ctx context.Context) error {
	logger := logging.NewLogger()

	// Load config
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Connect to DB
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer pool.Close()

	store := repository.NewPostgresVersionStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	svc := services.NewVersioningService(store, logger)

	// Skip seeding if the demo workflow already has history.
	const workflowID = "demo-incident-triage"
	if _, err := store.GetActive(ctx, workflowID); err == nil {
		logger.Info("Demo workflow already seeded, skipping")
		return nil
	} else if !errors.Is(err, models.ErrWorkflowNotFound) {
		return err
	}

	definition := &models.WorkflowDefinition{
		ID:          workflowID,
		DocumentID:  "demo-use-case",
		Name:        "Incident Triage",
		Description: "Classifies incoming incidents and notifies the right team.",
		Steps: []models.WorkflowStep{
			{
				ID:    "classify",
				Name:  "Classify incident",
				Type:  "agent",
				Agent: "incident-classifier",
				Parameters: map[string]interface{}{
					"confidence_threshold": 0.8,
				},
			},
			{
				ID:      "notify",
				Name:    "Notify on-call",
				Type:    "service",
				Service: "notifications",
				Conditions: map[string]interface{}{
					"severity": []string{"high", "critical"},
				},
			},
		},
		Triggers: []models.Trigger{
			{Type: "event", Config: map[string]interface{}{"source": "alert-stream"}},
		},
		Metadata: models.WorkflowMetadata{
			RequiredServices: []string{"notifications"},
			RequiredAgents:   []string{"incident-classifier"},
			Criticality:      "high",
			Tags:             []string{"incident", "demo"},
		},
	}

	v1, err := svc.CreateVersion(ctx, definition, models.ChangeRequest{
		ChangeType:  models.ChangeTypeMajor,
		Description: "Initial version",
	}, "seed-script")
	if err != nil {
		return fmt.Errorf("failed to seed initial version: %w", err)
	}
	logger.Info("Seeded version %s", v1.Version)

	// A second version with an extra escalation step.
	evolved := *definition
	evolved.Steps = append(append([]models.WorkflowStep{}, definition.Steps...), models.WorkflowStep{
		ID:     "escalate",
		Name:   "Escalate unresolved",
		Type:   "action",
		Action: "page-manager",
	})
	v2, err := svc.CreateVersion(ctx, &evolved, models.ChangeRequest{
		ChangeType:  models.ChangeTypeMinor,
		Description: "Add escalation step for unresolved incidents",
	}, "seed-script")
	if err != nil {
		return fmt.Errorf("failed to seed second version: %w", err)
	}
	logger.Info("Seeded version %s", v2.Version)

	logger.Info("Seeding complete!")
	return nil
}
