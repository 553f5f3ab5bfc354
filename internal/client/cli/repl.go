package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Open(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	DeleteUser(ctx context.Context) error
	License(ctx context.Context) error
	BulkAdd(ctx context.Context) error
	Visits(ctx context.Context) error
	ByUser(ctx context.Context) error
	Reset(ctx context.Context) error
}

// runREPL reads one command per line from reader and dispatches it to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
//	Login page:  help, login, status, reload, exit
//	App session: help, status, logout, exit
//	Admin mode:  help, users, adduser, deluser, license, bulkadd, visits,
//	             byuser, reset, status, logout, exit
//
// Errors returned by command handlers are ignored here; handlers report
// their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cl> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			switch {
			case a.isAdmin():
				printlnFn("Available commands: users, adduser, deluser, license, bulkadd, visits, byuser, reset, status, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: status, logout, exit")
			default:
				printlnFn("Available commands: login, status, reload, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "reload":
			_ = a.Open(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "status":
			_ = a.Status(ctx)

		case "users":
			_ = a.Users(ctx)

		case "adduser":
			_ = a.AddUser(ctx)

		case "deluser":
			_ = a.DeleteUser(ctx)

		case "license":
			_ = a.License(ctx)

		case "bulkadd":
			_ = a.BulkAdd(ctx)

		case "visits":
			_ = a.Visits(ctx)

		case "byuser":
			_ = a.ByUser(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
