// Package handlers implements the librarybuilder HTTP endpoints: the sign-in page and
// its form submission, the JSON API, the library view and the admin health check.
package handlers
