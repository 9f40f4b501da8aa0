/*
Package math implements the numeric kernels behind the dice package's
closed function set and its arithmetic operators: reductions
(sum/avg/len/max/min), ordering (sort/sortd and the max/min list-of-n
selection), and the four division rounding modes (truncate, floor,
ceil, nearest) that back `/`, `//`, and the floor/ceil/round functions.

Every function here operates on plain int32 values or slices. Those
that can fail return a sentinel error (ErrEmptyReduction,
ErrDivByZero) rather than a typed dice error: the dice package wraps these into DivisionByZeroError,
EmptyReductionError, and so on, attaching the source span that the
numeric kernel has no notion of.
*/
package math
