package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/client/client"
	"github.com/dmitrijs2005/cyclelogin/internal/client/config"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	// login page state
	cycle int
	count int64

	// app session state
	userName     string
	sessionStart time.Time
	admin        bool
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(c *config.Config, cl client.Client, r *bufio.Reader, w io.Writer) *App {
	return &App{config: c, client: cl, reader: r, out: w, now: time.Now}
}

// Run opens the first session and serves commands until the input ends or
// the user quits. A session still open at that point is closed first.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Welcome to Cycle Login CLI (type 'help' for commands)")

	_ = a.Open(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)

	if a.isLoggedIn() {
		_ = a.closeSession(ctx)
	}
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) isAdmin() bool {
	return a.admin
}

func (a *App) getStatus() string {
	s := fmt.Sprintf("cycle %d", a.cycle)
	if a.cycle == 0 {
		s = "cycle ?"
	}
	switch {
	case a.admin:
		s = "dev " + s
	case a.userName != "":
		s = a.userName + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}

// callCtx bounds a single remote call by the configured request timeout.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) referrer() string {
	if a.config == nil {
		return ""
	}
	return a.config.Referrer
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}

func (a *App) report(err error) error {
	a.printf("Error: %s", describe(err))
	return err
}
