// Package seed populates a local showroom database with demo data.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	entrypoint "github.com/verisim/verisim/internal/platform/cmd"
	"github.com/verisim/verisim/internal/services/showroom/auth"
	"github.com/verisim/verisim/internal/services/showroom/catalog"
	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/simulation"
	"github.com/verisim/verisim/internal/services/showroom/storage"
	"github.com/verisim/verisim/internal/services/showroom/storage/files"
	"github.com/verisim/verisim/internal/services/showroom/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath      string `env:"VERISIM_SHOWROOM_DB_PATH" envDefault:"data/showroom.db"`
	UploadsDir  string `env:"VERISIM_SHOWROOM_UPLOADS_DIR" envDefault:"data/uploads"`
	WithSession bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the showroom database")
	fs.StringVar(&cfg.UploadsDir, "uploads", cfg.UploadsDir, "path to the model uploads directory")
	fs.BoolVar(&cfg.WithSession, "with-session", true, "run a sample test session after seeding")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the database with a demo owner, end user, and product, and
// optionally walks one test session against the product.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	models, err := files.NewStore(cfg.UploadsDir)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(store, []byte("seed-only-secret"))
	if err != nil {
		return err
	}
	catalogService := catalog.NewService(catalog.Stores{
		Product:        store,
		Scenario:       store,
		Characteristic: store,
	}, models)
	simulationService := simulation.NewService(simulation.Stores{
		User:     store,
		Product:  store,
		Scenario: store,
		Session:  store,
	})

	owner, err := seedUser(ctx, authService, store, "demo-owner", domain.UserRoleOwner)
	if err != nil {
		return err
	}
	tester, err := seedUser(ctx, authService, store, "demo-tester", domain.UserRoleEndUser)
	if err != nil {
		return err
	}

	upload, err := catalogService.UploadProduct(ctx, catalog.UploadInput{
		OwnerID:     owner.ID,
		Name:        "Demo Desk Lamp",
		Description: "Adjustable demo lamp with a sample walkthrough",
		Model: &catalog.ModelUpload{
			Filename: "demo-lamp.glb",
			Content:  strings.NewReader(demoModelPayload),
		},
		Characteristics: []catalog.CharacteristicInput{
			{Name: "weight", Value: "1.2kg"},
			{Name: "material", Value: "aluminium"},
		},
		Scenarios: []catalog.ScenarioInput{{
			Name:       "Guided tour",
			Data:       map[string]any{"mode": "guided", "steps": 3},
			IsTemplate: true,
		}},
	})
	if err != nil {
		return fmt.Errorf("seed product: %w", err)
	}
	log.Printf("seeded product %s (%s)", upload.Product.ID, upload.Product.Status)

	if !cfg.WithSession {
		return nil
	}
	return runSampleSession(ctx, simulationService, tester.ID, upload.Product.ID)
}

// demoModelPayload is a placeholder asset body; any non-empty content
// passes the compatibility check.
const demoModelPayload = "glTF-demo-mesh"

func seedUser(ctx context.Context, authService *auth.Service, store *sqlite.Store, username string, role domain.UserRole) (domain.User, error) {
	user, err := authService.RegisterUser(ctx, auth.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "demo-password",
		Role:     role,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return store.GetUserByUsername(ctx, username)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("seed user %s: %w", username, err)
	}
	log.Printf("seeded user %s (%s)", user.Username, user.Role)
	return user, nil
}

func runSampleSession(ctx context.Context, simulationService *simulation.Service, userID, productID string) error {
	session, err := simulationService.CreateSession(ctx, domain.CreateSessionInput{
		UserID:    userID,
		ProductID: productID,
	})
	if err != nil {
		return fmt.Errorf("create sample session: %w", err)
	}
	if _, err := simulationService.InitializeSession(ctx, session.ID); err != nil {
		return fmt.Errorf("initialize sample session: %w", err)
	}
	for _, interaction := range []struct {
		tag  string
		data map[string]any
	}{
		{"click", nil},
		{"rotate", map[string]any{"angle": 45.0}},
		{"zoom", map[string]any{"level": 2.0}},
	} {
		if _, err := simulationService.ProcessInteraction(ctx, session.ID, interaction.tag, interaction.data); err != nil {
			return fmt.Errorf("sample %s: %w", interaction.tag, err)
		}
	}
	result, err := simulationService.FinalizeSession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("finalize sample session: %w", err)
	}
	log.Printf("sample session %s completed with %d interactions", result.SessionID, result.TotalInteractions)
	return nil
}
