package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/voidlane/nightrunner/core"
	"github.com/voidlane/nightrunner/event"
	"github.com/voidlane/nightrunner/parameter"
	"github.com/voidlane/nightrunner/sim"
)

// Headless driver: runs the simulation core for a fixed number of ticks
// with a scripted input stream and reports what happened. Useful for
// tuning passes and for catching determinism regressions from the shell.

type tickSample struct {
	Tick      uint64  `json:"tick"`
	X         float64 `json:"x"`
	Z         float64 `json:"z"`
	Heading   float64 `json:"heading"`
	TrackDist float64 `json:"trackDist"`
	Forward   float64 `json:"forward"`
	Yaw       float64 `json:"yaw"`
	Damage    float64 `json:"damage"`
	Crash     string  `json:"crash"`
}

func main() {
	seed := flag.Uint64("seed", 1, "global generation seed")
	ticks := flag.Int("ticks", 3600, "number of fixed ticks to run")
	traffic := flag.Int("traffic", 6, "traffic agents to spawn")
	configPath := flag.String("config", "", "JSON tuning override file")
	dumpPath := flag.String("dump", "", "write per-tick player trajectory (JSON lines)")
	sampleEvery := flag.Int("sample", 6, "trajectory sample interval in ticks")
	flag.Parse()

	tun := parameter.Default()
	if *configPath != "" {
		var err error
		tun, err = parameter.Load(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	w := sim.NewWorld(tun, *seed)
	player, ok := w.SpawnAgent(core.RolePlayer, 10, 0)
	if !ok {
		log.Fatal("no track under the spawn point")
	}
	for i := 0; i < *traffic; i++ {
		a, ok := w.SpawnAgent(core.RoleTraffic, 30+float64(i)*12, (i%3)-1)
		if !ok {
			break
		}
		w.SetIntent(a.ID, core.AutopilotIntent{TargetSpeed: 18 + float64(i%4)*4})
	}

	var enc *json.Encoder
	if *dumpPath != "" {
		f, err := os.Create(*dumpPath)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		enc = json.NewEncoder(f)
	}

	crashes := 0
	for tick := 0; tick < *ticks; tick++ {
		w.Step(scriptedInput(tick))
		for _, ev := range w.Events() {
			if ev.Type == event.TypeCrash {
				crashes++
				fmt.Printf("tick %d: crash agent=%d reason=%s speed=%.1f damage=%.2f\n",
					ev.Tick, ev.Agent, ev.Reason, ev.Speed, ev.Damage)
			}
		}
		if enc != nil && tick%*sampleEvery == 0 {
			_ = enc.Encode(tickSample{
				Tick:      w.Tick(),
				X:         player.Pos.X(),
				Z:         player.Pos.Z(),
				Heading:   player.Heading,
				TrackDist: player.TrackDist,
				Forward:   player.ForwardVel,
				Yaw:       player.YawOffset,
				Damage:    player.Damage.Total,
				Crash:     w.CrashState(player.ID).String(),
			})
		}
	}

	stats := w.Stats()
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("player: dist=%.1f speed=%.1f damage=%.2f state=%s crashes=%d\n",
		player.TrackDist, player.ForwardVel, player.Damage.Total, w.CrashState(player.ID), crashes)
	fmt.Println(string(out))
}

// scriptedInput is a smooth pseudo-driver: weaving steer, breathing
// throttle, rare brake taps and short handbrake bursts
func scriptedInput(tick int) core.ControlInput {
	return core.ControlInput{
		Steer:     0.5 * math.Sin(float64(tick)*0.011),
		Throttle:  0.6 + 0.4*math.Sin(float64(tick)*0.0037),
		Brake:     math.Max(0, math.Sin(float64(tick)*0.0009)-0.85),
		Handbrake: tick%331 < 6,
	}
}
