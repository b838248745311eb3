// Package report renders trust reports and batch job summaries in
// multiple output formats: JSON for tool integration, plain text for
// terminals, and Markdown for documentation.
package report
