package consults

import (
	"fmt"
	"strings"

	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/planner"
	"github.com/julianstephens/foodplannery/internal/validation"
)

type ConsultRequestCmd struct {
	Date  string `short:"d" help:"Consultation date (YYYY-MM-DD or 'tomorrow')." required:""`
	Time  string `short:"t" help:"Start time (HH:MM); must be one of the configured slots." required:""`
	Notes string `short:"n" help:"Anything the dietitian should know beforehand."`
}

func (c *ConsultRequestCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	timeOfDay := strings.TrimSpace(c.Time)

	result := validation.ValidateConsultationRequest(date, timeOfDay, ctx.Clock(), ctx.BookingRules())
	if err := result.Err(); err != nil {
		return err
	}

	consult := ctx.Planner().RequestConsultation(date, timeOfDay, strings.TrimSpace(c.Notes))
	ctx.Printf("✓ Requested consultation on %s at %s (id: %s)\n", consult.Date, consult.Time, consult.ID)
	ctx.Println("  Awaiting confirmation")
	return nil
}

type ConsultCancelCmd struct {
	ID string `arg:"" help:"Consultation ID."`
}

func (c *ConsultCancelCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	var found *models.Consultation
	for _, consult := range ctx.Planner().Consultations() {
		if consult.ID == c.ID {
			found = &consult
			break
		}
	}
	if found == nil {
		return fmt.Errorf("consultation not found: %s", c.ID)
	}

	ctx.Planner().CancelConsultation(c.ID)
	ctx.Printf("✓ Cancelled consultation on %s at %s\n", found.Date, found.Time)
	return nil
}

type ConsultListCmd struct {
	Past bool `help:"Also list past consultations."`
}

func (c *ConsultListCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	upcoming, past := planner.SplitConsultations(ctx.Planner().Consultations(), ctx.Clock())

	ctx.Println("Upcoming consultations:")
	if len(upcoming) == 0 {
		ctx.Println("  None scheduled")
	}
	for _, consult := range upcoming {
		ctx.Println(formatConsultation(consult))
	}

	if !c.Past {
		if len(past) > 0 {
			ctx.Printf("\n%d past consultation(s) hidden, use --past to show them\n", len(past))
		}
		return nil
	}

	ctx.Println("\nPast consultations:")
	if len(past) == 0 {
		ctx.Println("  None")
	}
	for _, consult := range past {
		ctx.Println(formatConsultation(consult))
	}
	return nil
}

func formatConsultation(c models.Consultation) string {
	status := "pending"
	if c.Confirmed {
		status = "confirmed"
	}
	line := fmt.Sprintf("  %s %s  [%s]  %s", c.Date, c.Time, status, c.ID)
	if c.Notes != "" {
		line += "\n      " + c.Notes
	}
	return line
}
