package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/client/models"
)

func (a *App) Sessions(ctx context.Context) error {
	sessions, err := a.sessionService.List(ctx)
	if err != nil {
		return err
	}
	printlnFn(formatSessions(sessions))
	return nil
}

func (a *App) Revoke(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", arg)
	}

	if err := a.sessionService.Revoke(ctx, id); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Session %d revoked.", id))
	return nil
}

func formatSessions(sessions []models.Session) string {
	if len(sessions) == 0 {
		return "No sessions."
	}

	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tIP\tLOCATION\t")
	for _, s := range sessions {
		location := "-"
		if s.Location != nil {
			location = *s.Location
		}
		current := ""
		if s.IsCurrent {
			current = "(current)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.CreatedAt.Local().Format(time.DateTime), s.IP, location, current)
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
