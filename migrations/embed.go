// Package migrations embeds the schema migrations so deploy tooling and
// integration tests can apply them without a checkout.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
