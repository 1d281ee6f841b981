// Package testutil contains helper builders and doubles used across tests
// to reduce boilerplate when constructing conversations and peer agents.
// They are not intended for production usage.
package testutil
