package main

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/warehouse/game/engine"
)

// RandomStrategy proposes random moves, leaning toward down and right
// because those pushes raise the GPS score.
type RandomStrategy struct {
	rng  *rand.Rand
	bias float64
}

func NewRandomStrategy(seed uint64, bias float64) *RandomStrategy {
	if bias < 0 {
		bias = 0
	}
	if bias > 1 {
		bias = 1
	}
	return &RandomStrategy{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		bias: bias,
	}
}

// Next returns n moves. The first one is drawn from possible when the
// server reported any, so a batch never starts against a wall.
func (s *RandomStrategy) Next(possible []string, n int) []string {
	moves := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i == 0 && len(possible) > 0 {
			moves = append(moves, possible[s.rng.IntN(len(possible))])
			continue
		}
		if s.rng.Float64() < s.bias {
			if s.rng.IntN(2) == 0 {
				moves = append(moves, string(engine.Down))
			} else {
				moves = append(moves, string(engine.Right))
			}
			continue
		}
		moves = append(moves, string(engine.Directions[s.rng.IntN(len(engine.Directions))]))
	}
	return moves
}
