// Command reverb-ir renders impulse responses from the reverb engine and
// validates them offline: no real-time audio I/O, just WAV files and a
// stability table on stdout.
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/aplitt/fdnreverb/pkg/telemetry"
)

var log = telemetry.New("cli")

// CLI is the top-level command set.
type CLI struct {
	Render RenderCmd `cmd:"" help:"Render a preset or custom parameter set to a WAV impulse response."`
	Sweep  SweepCmd  `cmd:"" help:"Run a room-size x decay-time stability sweep and print a pass/fail table."`
}

func main() {
	log.SetLevelFromEnv()

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("reverb-ir"),
		kong.Description("Offline impulse-response renderer and validator for the FDN reverb engine."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
