package services

import "github.com/dmitrijs2005/cyclelogin/internal/server/auth"

// Services is the set handed to the transports.
type Services struct {
	Counter  *CounterService
	Users    *UserService
	Licenses *LicenseService
	Visits   *VisitService
	Login    *LoginService
	Issuer   *auth.Issuer
}

// New wires every service on top of st. The issuer's override PIN is the
// one the login service accepts.
func New(st *Store, issuer *auth.Issuer) *Services {
	return &Services{
		Counter:  NewCounterService(st),
		Users:    NewUserService(st),
		Licenses: NewLicenseService(st),
		Visits:   NewVisitService(st),
		Login:    NewLoginService(st, issuer.OverridePIN()),
		Issuer:   issuer,
	}
}
