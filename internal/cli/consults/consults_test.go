package consults

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/cli/clitest"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/models"
)

func TestConsultRequest(t *testing.T) {
	env := clitest.LoggedIn(t)

	cmd := &ConsultRequestCmd{Date: "tomorrow", Time: "10:00", Notes: "  allergy review "}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []models.Consultation{{
		ID:     "id-1",
		UserID: "user-1",
		Date:   "2024-03-14",
		Time:   "10:00",
		Notes:  "allergy review",
	}}
	if diff := cmp.Diff(want, env.Ctx.Planner().Consultations()); diff != "" {
		t.Errorf("Consultations() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(env.Out.String(), "Awaiting confirmation") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestConsultRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		cmd  ConsultRequestCmd
		want string
	}{
		{"today is too soon", ConsultRequestCmd{Date: "today", Time: "10:00"}, "booked from 2024-03-14"},
		{"beyond window", ConsultRequestCmd{Date: "2024-04-13", Time: "10:00"}, "to 2024-04-12"},
		{"unknown slot", ConsultRequestCmd{Date: "2024-03-20", Time: "12:00"}, "not available"},
		{"bad time", ConsultRequestCmd{Date: "2024-03-20", Time: "noon"}, "hh:mm"},
		{"bad date", ConsultRequestCmd{Date: "20/03/2024", Time: "10:00"}, "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := clitest.LoggedIn(t)
			err := tt.cmd.Run(env.Ctx)
			if err == nil || !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.want)) {
				t.Errorf("Run() error = %v, want it to mention %q", err, tt.want)
			}
			if got := env.Ctx.Planner().Consultations(); len(got) != 0 {
				t.Errorf("Consultations() = %v, want none", got)
			}
		})
	}
}

func TestConsultRequestUsesConfiguredRules(t *testing.T) {
	env := clitest.LoggedIn(t)
	env.Ctx.Config.ConsultationSlots = []string{"12:00"}
	env.Ctx.Config.ConsultationWindowDays = 3

	if err := (&ConsultRequestCmd{Date: "2024-03-16", Time: "12:00"}).Run(env.Ctx); err != nil {
		t.Fatalf("configured slot rejected: %v", err)
	}
	if err := (&ConsultRequestCmd{Date: "2024-03-17", Time: "12:00"}).Run(env.Ctx); err == nil {
		t.Error("date past the configured window accepted")
	}
}

func TestConsultRequiresLogin(t *testing.T) {
	env := clitest.New(t)
	if err := (&ConsultListCmd{}).Run(env.Ctx); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("Run() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestConsultCancel(t *testing.T) {
	env := clitest.LoggedIn(t)
	if err := (&ConsultRequestCmd{Date: "tomorrow", Time: "09:00"}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&ConsultCancelCmd{ID: "id-1"}).Run(env.Ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := env.Ctx.Planner().Consultations(); len(got) != 0 {
		t.Errorf("Consultations() = %v after cancel", got)
	}
	if err := (&ConsultCancelCmd{ID: "id-1"}).Run(env.Ctx); err == nil {
		t.Error("cancelling an unknown id should fail")
	}
}

func TestConsultList(t *testing.T) {
	env := clitest.LoggedIn(t)
	seeded := `[
		{"id":"c-late","userId":"user-1","date":"2024-03-20","time":"15:00","confirmed":true},
		{"id":"c-old","userId":"user-1","date":"2024-03-01","time":"10:00","confirmed":true},
		{"id":"c-soon","userId":"user-1","date":"2024-03-13","time":"11:00","notes":"bring food diary","confirmed":false},
		{"id":"c-broken","userId":"user-1","date":"someday","time":"10:00","confirmed":false}
	]`
	if err := env.Store.Set(constants.SlotConsultations, []byte(seeded)); err != nil {
		t.Fatal(err)
	}
	env.Ctx.Planner().Reload()

	if err := (&ConsultListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Out.String()
	soon := strings.Index(out, "c-soon")
	late := strings.Index(out, "c-late")
	if soon < 0 || late < soon {
		t.Errorf("upcoming not in chronological order:\n%s", out)
	}
	if strings.Contains(out, "c-old") {
		t.Errorf("past consultation listed without --past:\n%s", out)
	}
	if !strings.Contains(out, "2 past consultation(s) hidden") {
		t.Errorf("missing hidden count:\n%s", out)
	}
	if !strings.Contains(out, "[pending]") || !strings.Contains(out, "[confirmed]") {
		t.Errorf("missing status labels:\n%s", out)
	}

	env.Out.Reset()
	if err := (&ConsultListCmd{Past: true}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out = env.Out.String()
	old := strings.Index(out, "c-old")
	broken := strings.Index(out, "c-broken")
	if old < 0 || broken < old {
		t.Errorf("unparseable consultation should follow dated past ones:\n%s", out)
	}
}
