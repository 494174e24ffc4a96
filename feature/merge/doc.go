// Package merge exposes the reconciliation engine over HTTP and wires it to the
// surrounding infrastructure.
//
// The Service wraps reconcile.Merger with three extras:
//   - Upload: when enabled, the committed output file is copied to
//     <bucket>/<upload_prefix>/<file name>, creating the bucket on first use.
//   - Run ledger: every merge, failed or not, is recorded through runs.Store when a
//     database is configured. Ledger failures are logged and never fail a merge.
//   - Request collapsing: identical requests arriving while one is still running share
//     its result through a singleflight.Group, so a double-submitted form does not
//     produce a second, bumped output file. The shared merge is detached from
//     request cancellation so one client disconnecting does not fail the others.
//
// # HTTP Endpoints
//
//   - POST /merge : Runs a merge. 400 on dataset config errors, 409 when the output
//     path is locked by another merge, 500 otherwise.
//   - GET /merge/runs : Lists recent runs (?limit=N). 503 without a database.
//
// # Request Body
//
//	{
//	  "master": {"location": "data/owners.csv", "id_column": "APN", "id_char_count": 10},
//	  "child":  {"location": "s3://sheets/contacts.csv", "id_column": "parcel", "id_char_count": "mixed"},
//	  "overwrite": false
//	}
//
// id_char_count is required on both datasets; omitting it is a 400.
package merge
