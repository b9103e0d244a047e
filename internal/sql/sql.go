// Package sql embeds the migrations and queries of the run registry.
package sql

import (
	"embed"
)

// Migrations holds the DDL files under migrations/, applied in name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_run.sql
var RegisterRun string

//go:embed queries/lookup_run_by_sha.sql
var LookupRunBySHA string

//go:embed queries/update_run_status.sql
var UpdateRunStatus string

//go:embed queries/insert_run_file.sql
var InsertRunFile string

//go:embed queries/clear_promoted_categories.sql
var ClearPromotedCategories string

//go:embed queries/promote_run.sql
var PromoteRun string

//go:embed queries/delete_staging_run.sql
var DeleteStagingRun string

//go:embed queries/analyze_records.sql
var AnalyzeRecords string
