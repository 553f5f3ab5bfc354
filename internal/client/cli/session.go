package cli

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/client/client"
	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/dmitrijs2005/cyclelogin/internal/license"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Open starts a login-page session: the visit counter moves on and an
// anonymous visit is recorded for the new cycle. If the counter cannot be
// reached the cycle stays unknown and the server picks the current one at
// login time.
func (a *App) Open(ctx context.Context) error {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	cnt, err := a.client.IncrementVisitCount(cctx)
	if err != nil {
		a.cycle, a.count = 0, 0
		return a.report(err)
	}
	a.cycle, a.count = cnt.Cycle, cnt.Count

	v := models.Visit{
		Type:      models.VisitTypeLogin,
		Referrer:  a.referrer(),
		Cycle:     a.cycle,
		Timestamp: a.now().UnixMilli(),
	}
	if err := a.client.RecordVisit(cctx, v); err != nil {
		a.report(err)
	}

	a.printf("Cycle %d (visit #%d)", a.cycle, a.count)
	return nil
}

// Login asks for credentials and validates them against the current cycle.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() || a.admin {
		a.printf("Already logged in, use logout first")
		return nil
	}

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	pin, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.client.Validate(cctx, userName, string(pin), a.cycle)
	if err != nil {
		return a.report(err)
	}

	if resp.Dev {
		a.client.SetAccessToken(resp.Token)
		a.admin = true
		a.printf("Developer mode enabled")
		return nil
	}

	if !resp.OK {
		a.printf("Login failed: %s", resp.Error)
		return nil
	}

	st := license.StatusAt(resp.LicenseExpiresAt, a.now().UnixMilli())
	if resp.License != nil {
		st = *resp.License
	}
	if st.Expired {
		a.printf("License expired. Contact the administrator to renew it.")
		return nil
	}

	// Sessions are keyed by the stored name so the duration amend finds them.
	name := strings.TrimSpace(userName)
	if resp.Username != "" {
		name = resp.Username
	}
	start := a.now()
	startMs := start.UnixMilli()
	v := models.Visit{
		Username:     &name,
		Type:         models.VisitTypeApp,
		Referrer:     a.referrer(),
		Cycle:        resp.Cycle,
		Timestamp:    startMs,
		SessionStart: &startMs,
	}
	if err := a.client.RecordVisit(cctx, v); err != nil {
		a.report(err)
	}

	a.userName = name
	a.sessionStart = start
	a.printf("Welcome, %s. License: %s remaining", name, st.Remaining)
	return nil
}

// Logout ends the app or admin session and returns to a fresh login page.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() && !a.admin {
		a.printf("Not logged in")
		return nil
	}
	if err := a.closeSession(ctx); err != nil {
		a.report(err)
	}
	return a.Open(ctx)
}

func (a *App) closeSession(ctx context.Context) error {
	if a.admin {
		a.client.SetAccessToken("")
		a.admin = false
		return nil
	}

	name := a.userName
	d := a.now().Sub(a.sessionStart)
	a.userName = ""
	a.sessionStart = time.Time{}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	_, err := a.client.AmendLastDuration(cctx, name, d.Milliseconds())
	return err
}

// Status prints the current cycle and, if known, the counter value.
func (a *App) Status(ctx context.Context) error {
	cctx, cancel := a.callCtx(ctx)
	defer cancel()

	cnt, err := a.client.GetVisitCount(cctx)
	if err != nil {
		return a.report(err)
	}
	a.printf("Visit count %d, current cycle %d", cnt.Count, cnt.Cycle)
	if a.isLoggedIn() {
		a.printf("Logged in as %s for %s", a.userName, a.now().Sub(a.sessionStart).Round(time.Second))
	}
	return nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again"
	case errors.Is(err, client.ErrUnauthorized):
		return "developer login required"
	case errors.Is(err, client.ErrNotFound):
		return "user not found"
	case errors.Is(err, client.ErrAlreadyExists):
		return "username already exists"
	default:
		return err.Error()
	}
}
