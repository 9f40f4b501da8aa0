/*
Package dice implements a dice-notation expression engine for tabletop
role-playing games.

An expression such as

	4d6kh3 + max(2d8, 1d10)!

is carried through five stages: a recursive-descent parser produces an
AST, a lowerer resolves functions and stamps every node with a semantic
type (Number, DicePool, SuccessPool, or List), an optimizer folds
constants and merges structurally identical dice additions, a compiler
plans the expression into an evaluation graph, and a runtime engine
drives that graph in rounds, calling an injected RNG and recording a
complete trace of every roll and modifier outcome.

# Dice Notation

A dice expression is a count of dice, a face specification, and zero or
more postfix modifiers: kh/kl/dh/dl (keep/drop), min/max (clamp), r
(reroll), ! and !! (explode/compound), sf/df/cs (success pools). See
Validate and Evaluate for the package's entry points.
*/
package dice
