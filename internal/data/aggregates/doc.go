// Package aggregates implements the domain aggregates on top of the table repos.
// Each write runs inside one transaction and reports failures as domain aggregate errors.
package aggregates
