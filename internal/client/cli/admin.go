package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
)

var errAdminOnly = errors.New("developer login required")

func (a *App) requireAdmin() error {
	if !a.admin {
		a.printf("Developer login required")
		return errAdminOnly
	}
	return nil
}

func (a *App) Users(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	users, err := a.client.ListUsers(cctx)
	if err != nil {
		return a.report(err)
	}
	if len(users) == 0 {
		a.printf("No users")
		return nil
	}
	printUsers(a.out, users, a.now().UnixMilli())
	return nil
}

func (a *App) AddUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter new username", a.out)
	if err != nil {
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.client.CreateUser(cctx, name)
	if err != nil {
		return a.report(err)
	}
	a.printf("Created %s (%s)", resp.User.Username, resp.User.ID)
	for i, code := range resp.CycleCodes {
		a.printf("  cycle %d: %s", i+1, code)
	}
	return nil
}

func (a *App) DeleteUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := getSimpleText(a.reader, "Enter user id to delete", a.out)
	if err != nil {
		return err
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.DeleteUser(cctx, id); err != nil {
		return a.report(err)
	}
	a.printf("Deleted")
	return nil
}

// License edits one user's license. Actions:
//
//	set YYYY-MM-DD   expire at midnight UTC of that day
//	clear            remove the license
//	add N            extend by N days (from now if already expired)
//	remove N         shorten by N days
func (a *App) License(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	id, err := getSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}
	action, err := getSimpleText(a.reader, "Action: set YYYY-MM-DD | clear | add N | remove N", a.out)
	if err != nil {
		return err
	}

	req, err := parseLicenseAction(action)
	if err != nil {
		a.printf("Error: %s", err)
		return err
	}
	req.ID = id

	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	u, err := a.client.UpdateLicense(cctx, req)
	if err != nil {
		return a.report(err)
	}
	a.printf("%s: %s", u.Username, licenseCell(u.LicenseExpiresAt, a.now().UnixMilli()))
	return nil
}

func parseLicenseAction(s string) (*api.UpdateLicenseRequest, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, errors.New("empty action")
	}

	req := &api.UpdateLicenseRequest{}
	switch parts[0] {
	case "clear":
		req.ExpiresAt = api.Some(nil)
		return req, nil
	case "set":
		if len(parts) != 2 {
			return nil, errors.New("usage: set YYYY-MM-DD")
		}
		t, err := time.ParseInLocation(time.DateOnly, parts[1], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad date: %w", err)
		}
		ms := t.UnixMilli()
		req.ExpiresAt = api.Some(&ms)
		return req, nil
	case "add", "remove":
		if len(parts) != 2 {
			return nil, fmt.Errorf("usage: %s N", parts[0])
		}
		days, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("bad day count %q", parts[1])
		}
		if parts[0] == "add" {
			req.AddDays = &days
		} else {
			req.RemoveDays = &days
		}
		return req, nil
	default:
		return nil, fmt.Errorf("unknown action %q", parts[0])
	}
}

// BulkAdd extends every active license. An empty answer uses the server
// default.
func (a *App) BulkAdd(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	s, err := getSimpleText(a.reader, fmt.Sprintf("Days to add to active licenses (default %d)", api.DefaultBulkDays), a.out)
	if err != nil {
		return err
	}

	var days float64
	if s != "" {
		days, err = strconv.ParseFloat(s, 64)
		if err != nil || days <= 0 {
			a.printf("Error: bad day count %q", s)
			return fmt.Errorf("bad day count %q", s)
		}
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	n, err := a.client.BulkAddLicense(cctx, days)
	if err != nil {
		return a.report(err)
	}
	a.printf("Extended %d license(s)", n)
	return nil
}

func (a *App) Visits(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	visits, err := a.client.ListVisits(cctx)
	if err != nil {
		return a.report(err)
	}
	if len(visits) == 0 {
		a.printf("No visits")
		return nil
	}
	printVisits(a.out, visits)
	return nil
}

// ByUser prints visits grouped by owner, anonymous visits included.
func (a *App) ByUser(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	groups, err := a.client.VisitsByUser(cctx)
	if err != nil {
		return a.report(err)
	}

	owners := make([]string, 0, len(groups))
	for k := range groups {
		owners = append(owners, k)
	}
	sort.Strings(owners)

	for _, o := range owners {
		a.printf("%s (%d)", o, len(groups[o]))
		printVisits(a.out, groups[o])
	}
	return nil
}

func (a *App) Reset(ctx context.Context) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	if err := a.client.ResetVisitCount(cctx); err != nil {
		return a.report(err)
	}
	a.printf("Visit count reset")
	return nil
}
