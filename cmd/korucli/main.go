// Command korucli reflects a WGSL vertex and fragment shader pair and
// prints the program meta data as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/devblok/korender/core"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/device/headless"
	log "github.com/sirupsen/logrus"
)

func main() {
	name := flag.String("set", "", "shader set to reflect, all sets when empty")
	flag.Parse()

	cfg, err := core.LoadConfiguration()
	if err != nil {
		log.Fatal(err)
	}
	sets, err := core.LoadShaders(cfg.Renderer)
	if err != nil {
		log.Fatal(err)
	}

	out := make(map[string]device.ProgramMeta)
	for _, set := range sets {
		if *name != "" && set.Name != *name {
			continue
		}
		meta, err := headless.Reflect(set.Vertex, set.Fragment)
		if err != nil {
			log.WithField("set", set.Name).Fatal(err)
		}
		out[set.Name] = meta
	}

	if bytes, err := json.MarshalIndent(out, "", "  "); err == nil {
		fmt.Printf("%s\n", bytes)
	} else {
		log.Fatal(err)
	}
	if len(out) == 0 {
		os.Exit(1)
	}
}
