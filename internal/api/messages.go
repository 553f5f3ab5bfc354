package api

import (
	"bytes"
	"encoding/json"

	"github.com/dmitrijs2005/cyclelogin/internal/license"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type DevTokenRequest struct {
	PIN string `json:"pin"`
}

type DevTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ValidateRequest is a login attempt. A zero Cycle means "the current one".
type ValidateRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
	Cycle    int    `json:"cycle,omitempty"`
}

// ValidateResponse reports a login decision. For privileged logins Token
// carries a dev token so the caller can go on to admin operations.
type ValidateResponse struct {
	OK               bool            `json:"ok"`
	Dev              bool            `json:"dev,omitempty"`
	Username         string          `json:"username,omitempty"`
	Token            string          `json:"token,omitempty"`
	Cycle            int             `json:"cycle,omitempty"`
	LicenseExpiresAt *int64          `json:"licenseExpiresAt"`
	License          *license.Status `json:"license,omitempty"`
	Error            string          `json:"error,omitempty"`
	Reason           string          `json:"reason,omitempty"`
}

type CounterResponse struct {
	Count int64 `json:"count"`
	Cycle int   `json:"cycle"`
}

type RecordVisitResponse struct {
	OK    bool         `json:"ok"`
	Visit models.Visit `json:"visit"`
}

type AmendDurationRequest struct {
	Username   string  `json:"username"`
	DurationMs float64 `json:"durationMs"`
}

type AmendDurationResponse struct {
	OK      bool `json:"ok"`
	Amended bool `json:"amended"`
}

type ListUsersResponse struct {
	Users []models.User `json:"users"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
}

type CreateUserResponse struct {
	OK         bool        `json:"ok"`
	User       models.User `json:"user"`
	CycleCodes []string    `json:"cycleCodes"`
}

type DeleteUserRequest struct {
	ID string `json:"id"`
}

// UpdateLicenseRequest mirrors PATCH /api/users/{id}/license. ExpiresAt
// distinguishes "absent" from an explicit null.
type UpdateLicenseRequest struct {
	ID         string   `json:"id,omitempty"`
	ExpiresAt  Optional `json:"expiresAt,omitzero"`
	RemoveDays *float64 `json:"removeDays,omitempty"`
	AddDays    *float64 `json:"addDays,omitempty"`
}

type UpdateLicenseResponse struct {
	OK   bool        `json:"ok"`
	User models.User `json:"user"`
}

// BulkAddLicenseRequest extends every active license. A missing or zero
// Days means DefaultBulkDays.
type BulkAddLicenseRequest struct {
	Days *float64 `json:"days,omitempty"`
}

// DaysOrDefault resolves the day count to apply.
func (r *BulkAddLicenseRequest) DaysOrDefault() float64 {
	if r.Days == nil || *r.Days == 0 {
		return DefaultBulkDays
	}
	return *r.Days
}

// DefaultBulkDays is used when a bulk extension names no day count.
const DefaultBulkDays = 30

type BulkAddLicenseResponse struct {
	OK    bool `json:"ok"`
	Count int  `json:"count"`
}

type ListVisitsResponse struct {
	Visits []models.Visit `json:"visits"`
}

type VisitsByUserResponse struct {
	Groups map[string][]models.Visit `json:"groups"`
}

// Optional is an epoch-millisecond field that can be absent, null, or a
// number.
type Optional struct {
	Set   bool
	Value *int64
}

// Some returns a present Optional; v may be nil for an explicit null.
func Some(v *int64) Optional { return Optional{Set: true, Value: v} }

func (o Optional) IsZero() bool { return !o.Set }

func (o Optional) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	v := int64(f)
	o.Value = &v
	return nil
}

// Visit is a telemetry entry as sent by clients.
type Visit = models.Visit
