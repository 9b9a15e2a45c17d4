// Package migrations embeds the SQL schema migrations so they can be
// applied at startup through golang-migrate's iofs source.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
