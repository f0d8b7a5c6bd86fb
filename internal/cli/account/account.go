package account

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/validation"
)

// LoginCmd signs in with a one-time code sent to a phone number. Without
// --code it requests a code and prompts for it.
type LoginCmd struct {
	Phone    string `short:"p" help:"Phone number to sign in with." required:""`
	Code     string `short:"c" help:"Verification code from an earlier request."`
	NoPrompt bool   `help:"Only request a code; finish with --code later."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}
	svc := ctx.Auth()

	code := strings.TrimSpace(c.Code)
	if code == "" {
		if err := svc.RequestOTP(c.Phone); err != nil {
			return err
		}
		if c.NoPrompt {
			ctx.Println("Code sent. Run login again with --code to finish signing in.")
			return nil
		}

		var err error
		code, err = ctx.Ask("Verification code")
		if err != nil {
			return err
		}
	}

	user, err := svc.Login(c.Phone, code)
	if err != nil {
		if errors.Is(err, auth.ErrCodeExpired) {
			return fmt.Errorf("%w, request a new one", err)
		}
		return err
	}

	ctx.Printf("✓ Logged in as %s\n", user.DisplayName())
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	_, wasLoggedIn := ctx.Auth().CurrentUser()
	if err := ctx.Auth().Logout(); err != nil {
		return err
	}
	if wasLoggedIn {
		ctx.Println("✓ Logged out")
	} else {
		ctx.Println("Not logged in.")
	}
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	user, err := ctx.RequireUser()
	if err != nil {
		return err
	}
	printProfile(ctx, user)
	return nil
}

// ProfileCmd updates profile fields. Lists are comma-separated and replace
// the stored list; pass an empty string to clear one.
type ProfileCmd struct {
	Name      *string `help:"Display name."`
	Email     *string `help:"Email address."`
	Dietary   *string `help:"Dietary preferences, comma-separated."`
	Allergies *string `help:"Allergies, comma-separated."`
}

func (c *ProfileCmd) patch() models.UserPatch {
	patch := models.UserPatch{}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		patch.Name = &name
	}
	if c.Email != nil {
		email := strings.TrimSpace(*c.Email)
		patch.Email = &email
	}
	if c.Dietary != nil {
		dietary := cli.SplitList(*c.Dietary)
		patch.Dietary = &dietary
	}
	if c.Allergies != nil {
		allergies := cli.SplitList(*c.Allergies)
		patch.Allergies = &allergies
	}
	return patch
}

func (c *ProfileCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.RequireUser(); err != nil {
		return err
	}

	patch := c.patch()
	if patch.Name == nil && patch.Email == nil && patch.Dietary == nil && patch.Allergies == nil {
		user, _ := ctx.Auth().CurrentUser()
		printProfile(ctx, user)
		return nil
	}

	result := validation.ValidateProfile(patch)
	if err := result.Err(); err != nil {
		return err
	}

	user, err := ctx.Auth().UpdateProfile(patch)
	if err != nil {
		return err
	}
	ctx.Println("✓ Profile updated")
	printProfile(ctx, user)
	return nil
}

func printProfile(ctx *cli.Context, user models.User) {
	ctx.Printf("Phone:     %s\n", user.Phone)
	ctx.Printf("Name:      %s\n", optional(user.Name))
	ctx.Printf("Email:     %s\n", optional(user.Email))
	ctx.Printf("Dietary:   %s\n", list(user.Preferences.Dietary))
	ctx.Printf("Allergies: %s\n", list(user.Preferences.Allergies))
	ctx.Printf("User ID:   %s\n", user.ID)
}

func optional(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func list(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
