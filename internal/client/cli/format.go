package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/license"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

func licenseCell(expiresAt *int64, now int64) string {
	if expiresAt == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%s)", license.Format(license.RemainingMs(expiresAt, now)), formatMs(*expiresAt))
}

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.DateTime)
}

func printUsers(w io.Writer, users []models.User, now int64) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tCODES\tLICENSE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Username, strings.Join(u.CycleCodes, " "), licenseCell(u.LicenseExpiresAt, now))
	}
	tw.Flush()
}

func printVisits(w io.Writer, visits []models.Visit) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tWHO\tTYPE\tCYCLE\tDURATION")
	for _, v := range visits {
		d := "-"
		if v.DurationMs != nil {
			d = (time.Duration(*v.DurationMs) * time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", formatMs(v.Timestamp), v.Owner(), v.Type, v.Cycle, d)
	}
	tw.Flush()
}
