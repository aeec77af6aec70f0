package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return nil
}

func (f *fakeExec) isLoggedIn() bool                   { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error { return f.record("register", nil) }
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) List(ctx context.Context) error   { return f.record("list", nil) }
func (f *fakeExec) More(ctx context.Context) error   { return f.record("more", nil) }
func (f *fakeExec) Create(ctx context.Context) error { return f.record("create", nil) }
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	return f.record("edit", args)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) Filter(ctx context.Context, args []string) error {
	return f.record("filter", args)
}
func (f *fakeExec) Pending(ctx context.Context) error { return f.record("pending", nil) }
func (f *fakeExec) Hobbies(ctx context.Context) error { return f.record("hobbies", nil) }

func silencePrint(t *testing.T) *[]string {
	t.Helper()
	var printed []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		printed = append(printed, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &printed
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrint(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"list",
		"login",
		"help",
		"l",
		"more",
		"create",
		"edit 7",
		"delete 7",
		"filter location=Riga hobby=music",
		"pending",
		"hobbies",
		"",
		"foobar",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	require.Equal(t, []string{
		"login", "list", "more", "create", "edit", "delete", "filter", "pending", "hobbies",
	}, exec.calls)
	require.Equal(t, []string{"7"}, exec.args[4])
	require.Equal(t, []string{"7"}, exec.args[5])
	require.Equal(t, []string{"location=Riga", "hobby=music"}, exec.args[6])
}

func TestRunREPL_RestrictedUntilLogin(t *testing.T) {
	printed := silencePrint(t)

	input := strings.NewReader("create\nregister\nquit\n")
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	require.Equal(t, []string{"register"}, exec.calls)
	require.Contains(t, strings.Join(*printed, "\n"), "Please log in first")
	require.Contains(t, strings.Join(*printed, "\n"), "Bye!")
}

func TestRunREPL_LogoutReturnsToGuestCommands(t *testing.T) {
	silencePrint(t)

	input := strings.NewReader("logout\nlist\n")
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	require.Equal(t, []string{"logout"}, exec.calls)
}
