package system

import (
	"fmt"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/validation"
)

// ValidateCmd reports problems in the stored meals and consultations. Problems
// are printed, not returned, so the report is the whole output.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

	ctx.Println("Validating meals...")
	result := validation.ValidateMeals(ctx.Planner().Meals())

	ctx.Println("Validating consultations...")
	result.Merge(validation.ValidateConsultations(ctx.Planner().Consultations()))

	ctx.Println()
	ctx.Println(result.FormatReport())
	return nil
}
