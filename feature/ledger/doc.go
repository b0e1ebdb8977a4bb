// Package ledger persists game results and remarks with GORM.
//
// The result table keeps one row per game keyed by the posting timestamp with the
// four seats flattened into p1_..p4_ columns; the remarks table keeps one row per
// (game, posting, player, matter). The store offers keyed CRUD plus range scans by
// play time and source prefix. Deleting a game cascades to its remarks.
package ledger
