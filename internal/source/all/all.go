// Package all wires every built-in source kind into the source registry.
// Import it for side effects only:
//
//	import _ "github.com/Karanpr-18/Excel-cleaning/internal/source/all"
//
// Binaries that need fewer drivers can import the kind packages directly.
package all

import (
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/csvfile"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/mssql"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/mysql"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/postgres"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/sqlite"
	_ "github.com/Karanpr-18/Excel-cleaning/internal/source/xlsx"
)
