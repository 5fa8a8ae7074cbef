// Package types defines the Workbook and Sheet storage interfaces, the cell
// and row model, the Shadower Admins column layout, trigger events, and the
// standard errors shared by every shadowsync backend and handler.
package types
