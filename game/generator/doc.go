// Package generator builds solvable road puzzles solution-first.
//
// Generation runs five steps over a fresh grid and a seeded random stream:
// the hub and landmarks are placed under spacing rules, an L-shaped route is
// laid from each landmark to the hub, every road tile gets the shape and
// rotation its neighbors call for, the solved layout is proven free of
// dangling openings and solvable, and finally visible rotations are
// scrambled. A failed step returns one of the package's sentinel errors and
// the whole attempt is discarded; retrying with another seed is the
// caller's job.
package generator
