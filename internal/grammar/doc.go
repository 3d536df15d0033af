// Package grammar compiles the console's command grammar and resolves
// operator input against it.
//
// A grammar description is line oriented:
//
//	# comment
//	display /5 [OUTPUT]
//	[OUTPUT] monitor /51 [SWITCH]
//	[OUTPUT] vive /52 [SWITCH]
//	[SWITCH] true /53
//	[SWITCH] false /54
//
// Each line is a path of tokens from the root. "/N" tags the preceding
// token's node with flag N. A line that starts with [LABEL] adds a
// continuation to LABEL; [LABEL] anywhere else expands to every
// continuation of LABEL, each followed by the rest of the line.
//
// The tokens INT, FLT, STR and STR_R are placeholders matching an integer,
// a float, any single token, and the rest of the line respectively.
// Resolution prefers a literal match over INT, INT over FLT, FLT over STR
// and STR over STR_R.
package grammar
