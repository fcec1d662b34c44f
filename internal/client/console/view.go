package console

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/placeboard/placeboard/internal/client/detail"
	"github.com/placeboard/placeboard/internal/client/places"
	"github.com/placeboard/placeboard/internal/client/services"
)

// openDetail runs the detail view loop for one place. The controller is
// created per visit and torn down on exit, so navigating away invalidates
// any request still in flight.
func (a *App) openDetail(ctx context.Context, placeID string, carried *places.Selection) error {
	controller := detail.NewController(detail.Config{
		PlaceID:   placeID,
		Resolver:  a.resolver,
		Locations: a.locations,
		Comments:  a.comments,
		Session:   a.store,
		Logger:    a.logger,
	})
	defer controller.Teardown()

	if err := controller.Enter(ctx, carried); err != nil {
		fmt.Fprintln(a.out, "Could not load this location; comments are unavailable")
	}

	for {
		snapshot := controller.Snapshot()
		a.render(snapshot)
		if snapshot.State != detail.StateReady {
			// Place never resolved or the record check failed; nothing to do here.
			return nil
		}

		command, err := getSimpleText(a.reader, "post | edit <n> | delete <n> | refresh | back", a.out)
		if err != nil {
			return err
		}
		parts := strings.Fields(command)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "back", "b":
			return nil

		case "refresh", "r":
			_ = controller.Refresh(ctx)

		case "post", "p":
			a.postComment(ctx, controller)

		case "edit", "e":
			a.editComment(ctx, controller, snapshot, parts)

		case "delete", "d":
			a.deleteComment(ctx, controller, snapshot, parts)

		default:
			fmt.Fprintln(a.out, "Unknown command:", parts[0])
		}
	}
}

func (a *App) render(snapshot detail.Snapshot) {
	switch snapshot.State {
	case detail.StateResolvingPlace:
		fmt.Fprintln(a.out, "Loading...")
		return
	case detail.StateCheckingLocation:
		fmt.Fprintf(a.out, "== %s ==\n", snapshot.PlaceName)
		fmt.Fprintln(a.out, "Comments are unavailable for this place right now")
		return
	}

	fmt.Fprintf(a.out, "== %s ==\n", snapshot.PlaceName)
	if snapshot.Record != nil && snapshot.Record.Address != "" {
		fmt.Fprintln(a.out, snapshot.Record.Address)
	}
	fmt.Fprintf(a.out, "(%.5f, %.5f)\n", snapshot.Coordinates.Lat, snapshot.Coordinates.Lng)

	if len(snapshot.Comments) == 0 {
		fmt.Fprintln(a.out, "No comments yet. Be the first to comment!")
		return
	}
	fmt.Fprintln(a.out, "Comments:")
	for index, comment := range snapshot.Comments {
		marker := ""
		if comment.Editable {
			marker = " (yours)"
		}
		fmt.Fprintf(a.out, "%2d. %s%s: %s\n", index+1, comment.CreatedBy.Name, marker, comment.Text)
	}
}

func (a *App) postComment(ctx context.Context, controller *detail.Controller) {
	text, err := getSimpleText(a.reader, "Your comment", a.out)
	if err != nil {
		return
	}
	if err := controller.PostComment(ctx, text); err != nil {
		a.printMutationFailure("post", err)
	}
}

func (a *App) editComment(ctx context.Context, controller *detail.Controller, snapshot detail.Snapshot, parts []string) {
	comment, ok := a.pickOwnComment(snapshot, parts)
	if !ok {
		return
	}
	text, err := getSimpleText(a.reader, "New text", a.out)
	if err != nil {
		return
	}
	if err := controller.EditComment(ctx, comment.ID, text); err != nil {
		a.printMutationFailure("edit", err)
	}
}

func (a *App) deleteComment(ctx context.Context, controller *detail.Controller, snapshot detail.Snapshot, parts []string) {
	comment, ok := a.pickOwnComment(snapshot, parts)
	if !ok {
		return
	}
	confirmed, err := Confirm(a.reader, "Are you sure you want to delete this comment?", a.out)
	if err != nil || !confirmed {
		return
	}
	if err := controller.DeleteComment(ctx, comment.ID); err != nil {
		a.printMutationFailure("delete", err)
	}
}

// pickOwnComment resolves "<cmd> <n>" to a comment the current user owns.
// Non-owned comments never expose edit/delete here; the backend enforces the
// same rule authoritatively.
func (a *App) pickOwnComment(snapshot detail.Snapshot, parts []string) (detail.CommentView, bool) {
	if len(parts) < 2 {
		fmt.Fprintln(a.out, "Which comment? e.g. edit 2")
		return detail.CommentView{}, false
	}
	index, err := strconv.Atoi(parts[1])
	if err != nil || index < 1 || index > len(snapshot.Comments) {
		fmt.Fprintln(a.out, "Not a valid comment number")
		return detail.CommentView{}, false
	}
	comment := snapshot.Comments[index-1]
	if !comment.Editable {
		fmt.Fprintln(a.out, "You can only change your own comments")
		return detail.CommentView{}, false
	}
	return comment, true
}

func (a *App) printMutationFailure(action string, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyComment):
		fmt.Fprintln(a.out, "Comment text is required")
	case errors.Is(err, detail.ErrBusy):
		fmt.Fprintln(a.out, "Another submission is still running")
	default:
		fmt.Fprintf(a.out, "Failed to %s comment\n", action)
	}
}
