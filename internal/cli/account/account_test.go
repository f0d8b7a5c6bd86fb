package account

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/cli/clitest"
	"github.com/julianstephens/foodplannery/internal/models"
)

func TestLoginPromptsForCode(t *testing.T) {
	env := clitest.New(t)
	env.Answers = []string{clitest.Code}

	if err := (&LoginCmd{Phone: clitest.Phone}).Run(env.Ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{clitest.Phone + ":" + clitest.Code}, env.Sender.Sent); diff != "" {
		t.Errorf("sent codes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(env.Out.String(), "Logged in as "+clitest.Phone) {
		t.Errorf("output = %q", env.Out.String())
	}
	if id := env.Ctx.Auth().CurrentUserID(); id != "user-1" {
		t.Errorf("CurrentUserID() = %q", id)
	}
}

func TestLoginInTwoSteps(t *testing.T) {
	env := clitest.New(t)

	if err := (&LoginCmd{Phone: clitest.Phone, NoPrompt: true}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.Ctx.Auth().CurrentUser(); ok {
		t.Fatal("requesting a code should not sign in")
	}

	if err := (&LoginCmd{Phone: clitest.Phone, Code: clitest.Code}).Run(env.Ctx); err != nil {
		t.Fatalf("verify error = %v", err)
	}
	if len(env.Sender.Sent) != 1 {
		t.Errorf("verify step sent another code: %v", env.Sender.Sent)
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		cmd     LoginCmd
		answers []string
		wantErr error
	}{
		{"wrong code", LoginCmd{Phone: clitest.Phone}, []string{"000000"}, auth.ErrInvalidCode},
		{"no pending code", LoginCmd{Phone: clitest.Phone, Code: clitest.Code}, nil, auth.ErrNoPendingCode},
		{"blank phone", LoginCmd{Phone: "  "}, nil, auth.ErrPhoneRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := clitest.New(t)
			env.Answers = tt.answers
			err := tt.cmd.Run(env.Ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if _, ok := env.Ctx.Auth().CurrentUser(); ok {
				t.Error("failed login should not sign in")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	env := clitest.LoggedIn(t)

	if err := (&LogoutCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "Logged out") {
		t.Errorf("output = %q", env.Out.String())
	}
	if err := (&WhoamiCmd{}).Run(env.Ctx); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("whoami after logout error = %v", err)
	}

	env.Out.Reset()
	if err := (&LogoutCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("second logout error = %v", err)
	}
	if !strings.Contains(env.Out.String(), "Not logged in.") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestProfileUpdate(t *testing.T) {
	env := clitest.LoggedIn(t)

	name := "Ada"
	dietary := "vegetarian, low-sodium,"
	allergies := ""
	cmd := &ProfileCmd{Name: &name, Dietary: &dietary, Allergies: &allergies}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	user, _ := env.Ctx.Auth().CurrentUser()
	want := models.Preferences{Dietary: []string{"vegetarian", "low-sodium"}, Allergies: []string{}}
	if diff := cmp.Diff(want, user.Preferences); diff != "" {
		t.Errorf("Preferences mismatch (-want +got):\n%s", diff)
	}
	if user.DisplayName() != "Ada" {
		t.Errorf("DisplayName() = %q", user.DisplayName())
	}
	if !strings.Contains(env.Out.String(), "Dietary:   vegetarian, low-sodium") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestProfileRejectsInvalidEmail(t *testing.T) {
	env := clitest.LoggedIn(t)

	email := "not-an-email"
	if err := (&ProfileCmd{Email: &email}).Run(env.Ctx); err == nil {
		t.Fatal("Run() expected error")
	}
	if user, _ := env.Ctx.Auth().CurrentUser(); user.Email != nil {
		t.Errorf("Email = %q after rejected update", *user.Email)
	}
}

func TestProfileWithoutFlagsPrints(t *testing.T) {
	env := clitest.LoggedIn(t)
	if err := (&ProfileCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "Phone:     "+clitest.Phone) {
		t.Errorf("output = %q", env.Out.String())
	}
}
