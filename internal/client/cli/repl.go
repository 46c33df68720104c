package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/askelund/proofdeck/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Create(ctx context.Context, name string) error
	Open(ctx context.Context, projectID, accessKey string) error
	Upload(ctx context.Context, projectID, accessKey, path string) error
	Send(ctx context.Context, path string) error
	Review(ctx context.Context, reviewID, accessKey string) error
	SetStatus(ctx context.Context, reviewID, status string) error
	Comment(ctx context.Context, reviewID string, x, y int, text string) error
	Watch(ctx context.Context, projectID, accessKey string) error
	WatchList(ctx context.Context) error
	WatchReview(ctx context.Context, reviewID, accessKey string) error
	Delete(ctx context.Context, projectID, accessKey string) error
}

const helpText = `Available commands:
  list                               show all projects (owner)
  create <name>                      create a project (owner)
  open <pid> <key>                   show a project via its link
  upload <pid> <key> <path>          upload a file into a project
  send <path>                        standalone upload, prints a review link
  review <id> [key]                  show a review with its pins
  approve <id>                       approve a review
  changes <id>                       send a review back for changes
  comment <id> <x> <y> <text...>     pin a comment at viewport position
  watch <pid> <key>                  follow a project live (Ctrl-C to stop)
  watch-list                         follow the project list live (owner)
  watch-review <id> [key]            follow a review and its pins live
  delete <pid> <key>                 delete a project and its files
  exit | quit                        leave the program`

// runREPL starts a simple read-eval-print loop. It reads a line, parses the
// first token as the command, and dispatches to methods on 'a'. Unknown
// commands are reported back. The loop exits on scanner EOF or when the user
// types "exit" or "quit". Command errors are printed, never fatal.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("pd> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "list":
			err = a.List(ctx)
		case "create":
			if len(args) < 1 {
				err = fmt.Errorf("usage: create <name>")
				break
			}
			err = a.Create(ctx, strings.Join(args, " "))
		case "open":
			if len(args) < 2 {
				err = fmt.Errorf("usage: open <pid> <key>")
				break
			}
			err = a.Open(ctx, args[0], args[1])
		case "upload":
			if len(args) < 3 {
				err = fmt.Errorf("usage: upload <pid> <key> <path>")
				break
			}
			err = a.Upload(ctx, args[0], args[1], args[2])
		case "send":
			if len(args) < 1 {
				err = fmt.Errorf("usage: send <path>")
				break
			}
			err = a.Send(ctx, args[0])
		case "review":
			if len(args) < 1 {
				err = fmt.Errorf("usage: review <id> [key]")
				break
			}
			key := ""
			if len(args) > 1 {
				key = args[1]
			}
			err = a.Review(ctx, args[0], key)
		case "approve":
			if len(args) < 1 {
				err = fmt.Errorf("usage: approve <id>")
				break
			}
			err = a.SetStatus(ctx, args[0], common.StatusApproved)
		case "changes":
			if len(args) < 1 {
				err = fmt.Errorf("usage: changes <id>")
				break
			}
			err = a.SetStatus(ctx, args[0], common.StatusNeedsChanges)
		case "comment":
			if len(args) < 4 {
				err = fmt.Errorf("usage: comment <id> <x> <y> <text...>")
				break
			}
			var x, y int
			if x, err = parseCoord(args[1]); err != nil {
				break
			}
			if y, err = parseCoord(args[2]); err != nil {
				break
			}
			err = a.Comment(ctx, args[0], x, y, strings.Join(args[3:], " "))
		case "watch":
			if len(args) < 2 {
				err = fmt.Errorf("usage: watch <pid> <key>")
				break
			}
			err = a.Watch(ctx, args[0], args[1])
		case "watch-list":
			err = a.WatchList(ctx)
		case "watch-review":
			if len(args) < 1 {
				err = fmt.Errorf("usage: watch-review <id> [key]")
				break
			}
			key := ""
			if len(args) > 1 {
				key = args[1]
			}
			err = a.WatchReview(ctx, args[0], key)
		case "delete":
			if len(args) < 2 {
				err = fmt.Errorf("usage: delete <pid> <key>")
				break
			}
			err = a.Delete(ctx, args[0], args[1])
		case "exit", "quit":
			return
		default:
			printlnFn("Unknown command. Type 'help' for the command list.")
		}

		if err != nil {
			printlnFn(fmt.Sprintf("error: %v", err))
		}
	}
}
