// Package migrations embeds the SQL schema migrations, one directory per
// database driver ("mysql", "sqlite3").
package migrations

import "embed"

//go:embed mysql/*.sql sqlite3/*.sql
var FS embed.FS
