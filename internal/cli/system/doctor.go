package system

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/migration"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/storage"
	"github.com/julianstephens/foodplannery/internal/storage/sqlite"
	"github.com/julianstephens/foodplannery/internal/validation"
	"github.com/julianstephens/foodplannery/migrations"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warnOnly failures are reported but do not fail the run
	warnOnly bool
	// needsStore checks are skipped when the store cannot be loaded
	needsStore bool
}

var checks = []check{
	{name: "Storage reachable", run: checkStoreReachable},
	{name: "Schema version", run: checkSchemaVersion, needsStore: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Data validation", run: checkData, needsStore: true},
	{name: "Clock/timezone", run: checkClock},
}

func (c *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	reachable := true
	for _, chk := range checks {
		if chk.needsStore && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (storage not reachable)\n", chk.name)
			continue
		}

		err := chk.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", chk.name)
		case chk.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", chk.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", chk.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if chk.name == "Storage reachable" {
				reachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return errors.New("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

// checkSchemaVersion compares the SQLite schema against the embedded
// migrations. Other providers migrate on load and have nothing to compare.
func checkSchemaVersion(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok || s.GetDB() == nil {
		return nil
	}

	subFS, err := migrations.SQLite()
	if err != nil {
		return fmt.Errorf("failed to access migrations: %w", err)
	}
	runner := migration.NewRunner(s.GetDB(), subFS)

	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	switch {
	case current > latest:
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	backups, err := ctx.Backups().ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'foodplannery backup create'")
	}
	return nil
}

// checkData reads the raw slots so that unreadable JSON is reported instead
// of being replaced with an empty collection.
func checkData(ctx *cli.Context) error {
	var meals []models.Meal
	if err := readSlot(ctx.Store, constants.SlotMeals, &meals); err != nil {
		return err
	}
	var consultations []models.Consultation
	if err := readSlot(ctx.Store, constants.SlotConsultations, &consultations); err != nil {
		return err
	}

	result := validation.ValidateMeals(meals)
	result.Merge(validation.ValidateConsultations(consultations))
	return result.Err()
}

// readSlot leaves dst untouched when the slot has never been written
func readSlot(store storage.Provider, key string, dst any) error {
	data, err := store.Get(key)
	if storage.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%s holds invalid JSON: %w", key, err)
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := ctx.Clock()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if now.Location() == time.UTC {
		ctx.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
