package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	More(ctx context.Context) error
	Create(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error
	Pending(ctx context.Context) error
	Hobbies(ctx context.Context) error
}

// runREPL reads commands from scanner and dispatches them to a until EOF
// or "exit".
//
//	Not logged in:
//	  - help              show available commands
//	  - register          create an account
//	  - login             authenticate
//	  - exit | quit       leave the program
//
//	Logged in:
//	  - (l)ist            show the loaded events
//	  - (m)ore            load the next page
//	  - create            create an event
//	  - edit <id>         change an event you own
//	  - delete <id>       delete an event you own
//	  - filter [k=v ...]  switch filter: location=, hobby=, official=
//	  - pending           ids with unsettled changes
//	  - hobbies           known hobby tags
//	  - logout            log out
//
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ef %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn("Available commands: register, login, exit")
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			case "exit", "quit":
				printlnFn("Bye!")
				return
			default:
				printlnFn("Please log in first (unknown or restricted command:", cmd+")")
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: (l)ist, (m)ore, create, edit <id>, delete <id>, filter [k=v ...], pending, hobbies, logout, exit")
		case "l", "list":
			_ = a.List(ctx)
		case "m", "more":
			_ = a.More(ctx)
		case "create":
			_ = a.Create(ctx)
		case "edit":
			_ = a.Edit(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)
		case "filter":
			_ = a.Filter(ctx, args)
		case "pending":
			_ = a.Pending(ctx)
		case "hobbies":
			_ = a.Hobbies(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
