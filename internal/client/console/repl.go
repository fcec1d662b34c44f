package console

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Run starts the read-eval-print loop. It restores the persisted session
// first, so a previous login survives a restart. The loop exits on EOF or
// when the user types "exit"/"quit".
//
// Commands and prompts share one line source: everything is read through
// a.reader, never a second buffering layer, so piped input reaches the
// prompt that asked for it.
func (a *App) Run(ctx context.Context) {
	a.store.Restore()
	defer a.Close()

	for {
		fmt.Fprintf(a.out, "placeboard> %s > ", a.statusLine())
		line, readErr := a.reader.ReadString('\n')
		if readErr != nil && strings.TrimSpace(line) == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		rest := strings.Join(parts[1:], " ")

		var commandErr error
		switch cmd {
		case "help":
			a.printHelp()

		case "login":
			commandErr = a.Login(ctx)

		case "register":
			commandErr = a.Register(ctx)

		case "logout":
			if a.requireLogin() {
				commandErr = a.Logout(ctx)
			}

		case "search", "s":
			if a.requireLogin() {
				commandErr = a.Search(ctx, rest)
			}

		case "open":
			if a.requireLogin() {
				commandErr = a.Open(ctx, rest)
			}

		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return

		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}

		// Auth and backend failures are reported inline by the command
		// itself; an error here means the input stream broke mid-prompt.
		if commandErr != nil {
			a.logger.Error("command aborted",
				zap.String("command", cmd), zap.Error(commandErr))
			return
		}

		// A search that ended in a pick produced exactly one selection;
		// consume it and enter the detail view for that place.
		select {
		case selection, ok := <-a.selections.Selections():
			if ok {
				if err := a.openDetail(ctx, selection.PlaceID, &selection); err != nil {
					a.logger.Error("detail view aborted", zap.Error(err))
					return
				}
			}
		default:
		}

		if readErr != nil {
			return
		}
	}
}

func (a *App) requireLogin() bool {
	if a.isLoggedIn() {
		return true
	}
	fmt.Fprintln(a.out, "Log in first (login or register)")
	return false
}

func (a *App) printHelp() {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Available commands: (s)earch <text>, open <placeId>, logout, exit")
		return
	}
	fmt.Fprintln(a.out, "Available commands: login, register, exit")
}
