package main

import (
	"flag"
	"fmt"
	"log"

	"gonum.org/v1/gonum/stat"

	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/track"
)

// trackgen soaks the spline generator: builds a long track at a fixed
// difficulty, alternates fork choices, and prints curvature and retry
// statistics. Run it after touching generation tunables.

func main() {
	seed := flag.Uint64("seed", 1, "global generation seed")
	dist := flag.Float64("dist", 50000, "track distance to generate")
	difficulty := flag.Float64("difficulty", 1, "difficulty in [0,1]")
	flag.Parse()

	tun := parameter.Default()
	if err := tun.Validate(); err != nil {
		log.Fatal(err)
	}

	arena := track.NewArena()
	g := track.NewGenerator(tun, *seed, arena)

	forks := 0
	keepLeft := true
	for g.Frontier() < *dist {
		before := g.Frontier()
		g.Extend(*dist, *difficulty)
		if g.OpenFork() != nil {
			g.ResolveFork(keepLeft)
			keepLeft = !keepLeft
			forks++
		} else if g.Frontier() <= before {
			log.Fatalf("generator stalled at %.1f", before)
		}
	}

	kappaMax := 1 / tun.MinTurnRadius
	var curvatures, lengths []float64
	kinds := map[track.Kind]int{}
	violations := 0
	arena.Each(func(s *track.Segment) {
		k := s.MaxCurvature()
		curvatures = append(curvatures, k)
		lengths = append(lengths, s.Length())
		kinds[s.Kind]++
		if k > kappaMax {
			violations++
		}
	})

	fmt.Printf("segments: %d  forks: %d  retries: %d  fallbacks: %d\n",
		len(curvatures), forks, g.Retries(), g.Fallbacks())
	fmt.Printf("curvature: mean=%.5f max=%.5f bound=%.5f violations=%d\n",
		stat.Mean(curvatures, nil), maxOf(curvatures), kappaMax, violations)
	fmt.Printf("length: mean=%.1f stddev=%.1f\n",
		stat.Mean(lengths, nil), stat.StdDev(lengths, nil))
	for _, kind := range []track.Kind{
		track.KindStraight, track.KindCurve, track.KindTunnel, track.KindOverpass, track.KindFork,
	} {
		fmt.Printf("  %-9s %d\n", kind, kinds[kind])
	}
	if violations > 0 {
		log.Fatal("curvature bound violated")
	}
}

func maxOf(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
