// Package score turns score postings into calculated game results.
//
// A posting is a chat line carrying the configured keyword and four (name, expression)
// pairs, for example:
//
//	御無礼 東家+300 南家250 西家200 北家250
//
// ParsePosting extracts the raw fields, NormalizeExpression evaluates each expression
// with a small integer arithmetic evaluator, and Calc assigns ranks, points and the
// deposit under a Rule. Ranks follow seat order on ties unless the rule splits the
// rank points of tied seats.
//
// Rules come from a YAML rule file (LoadRuleSet) that also carries the member alias
// table used by Normalizer. RuleContext bundles the active rule with the posting
// keywords and is passed to every caller that scores text.
package score
