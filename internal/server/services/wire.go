package services

import (
	"context"

	"github.com/dmitrijs2005/cyclelogin/internal/api"
)

// ValidateRequest runs a login attempt and shapes the reply both
// transports send. A privileged login also gets a dev token.
func (s *Services) ValidateRequest(ctx context.Context, req *api.ValidateRequest) (*api.ValidateResponse, error) {
	out, err := s.Login.Validate(ctx, req.Username, req.PIN, req.Cycle)
	if err != nil {
		return nil, err
	}

	if !out.Accepted {
		return &api.ValidateResponse{
			Cycle:  out.Cycle,
			Error:  out.Reason.Message(),
			Reason: out.Reason.String(),
		}, nil
	}

	if out.Privileged {
		token, _, err := s.Issuer.Exchange(req.PIN)
		if err != nil {
			return nil, err
		}
		return &api.ValidateResponse{OK: true, Dev: true, Token: token}, nil
	}

	return &api.ValidateResponse{
		OK:               true,
		Username:         out.User.Username,
		Cycle:            out.Cycle,
		LicenseExpiresAt: out.LicenseExpiresAt(),
		License:          out.License,
	}, nil
}

// LicenseChangeFrom converts a wire license edit.
func LicenseChangeFrom(req *api.UpdateLicenseRequest) LicenseChange {
	ch := LicenseChange{SetExpiry: req.ExpiresAt.Set, ExpiresAt: req.ExpiresAt.Value}
	if req.RemoveDays != nil {
		ch.RemoveDays = *req.RemoveDays
	}
	if req.AddDays != nil {
		ch.AddDays = *req.AddDays
	}
	return ch
}
