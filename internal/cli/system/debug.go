package system

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/storage"
)

type DebugCmd struct {
	DBPath   *DebugDBPathCmd   `cmd:"" help:"Show storage path."`
	Slots    *DebugSlotsCmd    `cmd:"" help:"List the slots present in storage."`
	DumpSlot *DebugDumpSlotCmd `cmd:"" help:"Dump a slot's raw JSON."`
	DumpMeal *DebugDumpMealCmd `cmd:"" help:"Dump meal data as JSON."`
}

type DebugDBPathCmd struct{}

func (c *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugSlotsCmd struct{}

func (c *DebugSlotsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	keys, err := ctx.Store.Keys()
	if err != nil {
		return fmt.Errorf("failed to list slots: %w", err)
	}
	slices.Sort(keys)
	for _, k := range keys {
		ctx.Println(k)
	}
	return nil
}

type DebugDumpSlotCmd struct {
	Key string `arg:"" help:"Slot key, e.g. foodplannery_meals."`
}

func (c *DebugDumpSlotCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	data, err := ctx.Store.Get(c.Key)
	if storage.IsNotFound(err) {
		return fmt.Errorf("slot not found: %s", c.Key)
	}
	if err != nil {
		return fmt.Errorf("failed to read slot: %w", err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		// Show what is there even when it does not parse
		ctx.Println(string(data))
		return fmt.Errorf("slot %s holds invalid JSON: %w", c.Key, err)
	}
	return printJSON(ctx, value)
}

type DebugDumpMealCmd struct {
	ID string `arg:"" help:"ID of the meal to dump."`
}

func (c *DebugDumpMealCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	meal, ok := ctx.Planner().Meal(c.ID)
	if !ok {
		return fmt.Errorf("meal not found: %s", c.ID)
	}
	return printJSON(ctx, meal)
}

func printJSON(ctx *cli.Context, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(data))
	return nil
}
