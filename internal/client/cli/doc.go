// Package cli implements the interactive cycle login client.
//
// A session starts the way the login page does: the shared visit counter is
// incremented, the resulting cycle is shown and an anonymous login-page visit
// is recorded. "login" asks for a username and a hidden PIN. An accepted
// login with a live license opens an app session, which "logout" closes by
// amending the session duration. Logging in with the override PIN switches
// the client to admin mode, which unlocks user, license and visit management.
package cli
