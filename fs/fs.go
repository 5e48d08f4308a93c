// Package appfs exposes the app's embedded static files
// (DB migrations, email templates, assets).
package appfs

import "embed"

//go:embed migrations templates assets
var FS embed.FS
