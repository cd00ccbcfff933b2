// # Sessions
//
// A [Session] holds one parsed file being edited: the file itself, the index
// of the current sheet, the latest validation report and the id of the
// history entry the file is saved under.
//
// Every change goes through the [Service]:
//
//	state, err := svc.Upload(ctx, "leads.xlsx", data)
//	state, err = svc.UpdateCell(ctx, state.SessionID, core.CellEdit{Row: 2, Field: "Email", Value: "a@b.io"})
//	out, err := svc.Export(ctx, state.SessionID)
//
// Edits never modify a ParsedFile in place. Each one builds a replacement,
// bumps the session version, re-validates the current sheet and saves a
// snapshot to the history store under the session's history id.
//
// # Validation versions
//
// Validation runs without holding the session lock. The result is applied
// only if the session version is unchanged when validation finishes; a result
// for an older version is dropped and [ErrStaleValidation] is returned to the
// caller that started it. The newer edit always schedules its own pass, so
// the stored report always describes the stored rows.
package core
