// Package genetic searches the lane-assignment space of a chain
// decomposition with a genetic algorithm.
//
// Each individual is one complete chain-to-lane mapping. Generations run
// tournament selection, uniform crossover and a prioritized set of mutation
// strategies, with the best individual carried over unchanged (elitism).
// The search terminates on a generation cap, a wall-clock timeout, or a
// configurable number of stagnant generations; a timeout is a normal exit
// that still yields the best assignment found so far.
//
// The search is heuristic and best-effort: it makes no optimality
// guarantees, only that the reported score never worsens across
// generations.
package genetic
