// Package clitest builds command contexts over in-memory storage for tests.
package clitest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/cli"
	"github.com/julianstephens/foodplannery/internal/config"
	"github.com/julianstephens/foodplannery/internal/planner"
	"github.com/julianstephens/foodplannery/internal/storage"
)

const (
	Phone = "+15550100"
	Code  = "123456"
)

// Now is the fixed clock every test context starts with: Wednesday 2024-03-13 09:30 UTC
var Now = time.Date(2024, time.March, 13, 9, 30, 0, 0, time.UTC)

// Sender records delivered codes
type Sender struct {
	Sent []string
}

func (s *Sender) Send(phone, code string) error {
	s.Sent = append(s.Sent, phone+":"+code)
	return nil
}

// Env is a context plus the fakes behind it
type Env struct {
	Ctx     *cli.Context
	Store   *storage.MemoryStore
	Out     *bytes.Buffer
	Sender  *Sender
	Answers []string
}

// New returns a context over a fresh memory store. Prompts are answered from
// Env.Answers in order; running out fails the test.
func New(t *testing.T) *Env {
	t.Helper()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	env := &Env{
		Store:  storage.NewMemoryStore(),
		Out:    &bytes.Buffer{},
		Sender: &Sender{},
	}

	ids := 0
	env.Ctx = &cli.Context{
		Store:  env.Store,
		Config: cfg,
		Out:    env.Out,
		Now:    func() time.Time { return Now },
		Sender: env.Sender,
		Prompt: func(title string) (string, error) {
			if len(env.Answers) == 0 {
				t.Fatalf("unexpected prompt %q", title)
			}
			answer := env.Answers[0]
			env.Answers = env.Answers[1:]
			return answer, nil
		},
		AuthOptions: []auth.Option{
			auth.WithCodeFunc(func() (string, error) { return Code, nil }),
			auth.WithIDFunc(func() string { return "user-1" }),
			auth.WithHashCost(bcrypt.MinCost),
		},
		PlannerOptions: []planner.Option{
			planner.WithIDFunc(func() string {
				ids++
				return fmt.Sprintf("id-%d", ids)
			}),
		},
	}
	return env
}

// LoggedIn returns a context whose user has already completed the OTP flow
func LoggedIn(t *testing.T) *Env {
	t.Helper()

	env := New(t)
	if err := env.Ctx.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := env.Ctx.Auth().RequestOTP(Phone); err != nil {
		t.Fatalf("RequestOTP() error = %v", err)
	}
	if _, err := env.Ctx.Auth().Login(Phone, Code); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	env.Out.Reset()
	return env
}
