// Package services holds the server's business rules: account
// registration and login, and event listing and writes with ownership
// checks and change notifications.
package services
