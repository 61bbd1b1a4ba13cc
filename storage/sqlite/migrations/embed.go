// Package migrations embeds the leaderboard schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
