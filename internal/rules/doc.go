// Package rules maps rule-set selections to complete, validated RuleSets.
//
// The hard cap is derived from the target score, never chosen separately:
// selecting the casual 11-point game also lowers the cap to 15, the
// standard 21-point game caps at 30. ForTarget is the only place this
// coupling lives.
//
// Extra named presets can be declared in CUE:
//
//	presets: {
//		doubles_practice: { target: 15, max: 21 }
//		short: { target: 7, max: 11, win_by: 1 }
//	}
//
// Every preset is unified with the embedded #RuleSet schema and then
// checked again with Validate.
package rules
