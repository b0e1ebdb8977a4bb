// Package comparison reconciles the ledger with the chat history it was recorded from.
//
// A sweep fetches the score and remark postings made since a start time together
// with the stored results and remarks of the configured source, then:
//
//   - holds back postings still inside the pending window (last edit + wait),
//   - inserts postings missing from the ledger and updates stored results that
//     differ, unless the stored result was recorded under another rule version,
//   - deletes stored results whose posting is gone or sits in a thread while
//     thread reports are off, clearing their markers,
//   - marks every settled posting ok or ng depending on whether its raw scores balance,
//   - replaces the remarks of threads whose remarks changed and deletes stored
//     remarks no longer posted.
//
// Findings are collected in a ComparisonReport. Repairs are planned first and
// applied afterwards, so a dry run reports exactly what a real sweep would change.
//
// Service serialises sweeps per source, records metrics and a trace span, and can
// archive each report to object storage. Handler exposes it as POST /comparison.
package comparison
