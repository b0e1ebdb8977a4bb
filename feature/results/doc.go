// Package results serves manual entry and inspection of game results over HTTP.
//
//	POST   /results             record a posting text or explicit seats
//	POST   /results/calculate   score without recording
//	GET    /results?after=7     list recent results
//	GET    /results/:ts         one result
//	DELETE /results/:ts         delete a result and its remarks
//	POST   /results/:ts/remarks attach remarks
//
// Explicit seats may name a rule version, which allows three-player games.
package results
