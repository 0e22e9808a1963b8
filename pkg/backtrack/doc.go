// Package backtrack materializes combinatorial searches into step sequences.
//
// Every producer walks its search tree depth-first with candidates in ascending
// order, so identical parameters always yield identical sequences. Each candidate
// emits a try step before its constraint is evaluated; accepted candidates emit a
// place step and recurse, rejected ones emit a conflict step, returning from a
// recursion emits a remove step, and complete configurations emit a solution step
// carrying a full snapshot.
package backtrack
